// Command predict is a minimal consumer of the forward-pass
// interface: it loads a saved model and reads a flattened pixel
// vector from standard input, one whitespace-separated intensity per
// component, and prints the predicted digit and its confidence.
//
// It supplements the interactive drawing tool's end use (load model,
// forward the currently painted grid, show the prediction) without
// the GUI/canvas layer that tool builds on — a windowing dependency
// this module does not carry.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/MattanMohel/net-rs/pkg/matrix"
	"github.com/MattanMohel/net-rs/pkg/network"
)

const modelPath = "models/digit.json"

func main() {
	net, err := network.LoadFrom(modelPath)
	if err != nil {
		log.Fatalf("loading model: %s", err)
	}

	buf := make([]float64, net.Form()[0])
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Split(bufio.ScanWords)
	for i := range buf {
		if !scanner.Scan() {
			log.Fatalf("expected %d pixel values, got %d", len(buf), i)
		}
		var px float64
		if _, err := fmt.Sscanf(scanner.Text(), "%f", &px); err != nil {
			log.Fatalf("parsing pixel %d: %s", i, err)
		}
		buf[i] = px
	}

	input, err := matrix.VectorFromSlice(buf)
	if err != nil {
		log.Fatalf("building input vector: %s", err)
	}

	out, err := net.Forward(input)
	if err != nil {
		log.Fatalf("forward pass: %s", err)
	}

	hot := out.Argmax()
	fmt.Printf("predicted digit: %d (confidence %.4f)\n", hot, out.At(hot))
}
