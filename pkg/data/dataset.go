// Package data loads training samples.
package data

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Sample is one training example: inputs X and the expected output Y.
type Sample struct {
	X []float64 `yaml:"x"`
	Y float64   `yaml:"y"`
}

// Default returns the four samples of the classic demo: 3 inputs, targets ±1.
func Default() []Sample {
	return []Sample{
		{X: []float64{2.0, 3.0, -1.0}, Y: 1.0},
		{X: []float64{3.0, -1.0, 0.5}, Y: -1.0},
		{X: []float64{1.0, 1.0, -1.0}, Y: 1.0},
		{X: []float64{0.5, 1.0, 1.0}, Y: -1.0},
	}
}

// LoadSamples reads samples from a text file, see Parse for the format.
func LoadSamples(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	samples, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// Parse reads one sample per line. Values are separated by commas or
// whitespace, the last value is the target. Blank lines and lines starting
// with '#' are skipped. Every sample must have the same number of inputs.
func Parse(r io.Reader) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: need at least one input and a target, got %d values", lineNo, len(fields))
		}

		values := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			values[i] = v
		}

		s := Sample{X: values[:len(values)-1], Y: values[len(values)-1]}
		if len(samples) > 0 && len(s.X) != len(samples[0].X) {
			return nil, fmt.Errorf("line %d: got %d inputs, want %d", lineNo, len(s.X), len(samples[0].X))
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
