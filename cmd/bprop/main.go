// Command bprop is the reference training driver: it reads model and
// dataset paths from constants (no documented flags), trains a
// network on the MNIST-style dataset, and saves the result.
package main

import (
	"fmt"
	"log"

	"github.com/MattanMohel/net-rs/pkg/config"
	"github.com/MattanMohel/net-rs/pkg/dataset"
	"github.com/MattanMohel/net-rs/pkg/network"
)

const (
	modelPath   = "models/digit.json"
	trainImages = "res/train-images"
	trainLabels = "res/train-labels"
	testImages  = "res/test-images"
	testLabels  = "res/test-labels"

	epochs = 10
)

func main() {
	inputs, targets, err := dataset.Load(trainImages, trainLabels)
	if err != nil {
		log.Fatalf("loading training set: %s", err)
	}

	hyper, err := config.NewBuilder([]int{784, 64, 10}).
		BatchSize(32).
		LearnRate(0.1).
		SavePath(modelPath).
		StatEpoch(true).
		StatError(true).
		Build()
	if err != nil {
		log.Fatalf("building hyperparameters: %s", err)
	}

	net, err := network.New(hyper)
	if err != nil {
		log.Fatalf("constructing network: %s", err)
	}

	if err := net.Train(inputs, targets, epochs); err != nil {
		log.Fatalf("training: %s", err)
	}

	if err := net.Save(modelPath); err != nil {
		log.Fatalf("saving model: %s", err)
	}
	fmt.Printf("model saved to %s\n", modelPath)

	testInputs, testTargets, err := dataset.Load(testImages, testLabels)
	if err != nil {
		log.Fatalf("loading test set: %s", err)
	}
	acc, err := net.Accuracy(testInputs, testTargets)
	if err != nil {
		log.Fatalf("computing test accuracy: %s", err)
	}
	fmt.Printf("test accuracy: %.4f\n", acc)
}
