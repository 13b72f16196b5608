// Package workload provides sample payloads for parbench benchmarks, and
// generators for their input batches.
//
// All generators draw from the given random source, so a fixed seed yields
// a reproducible batch.
package workload

import (
	"fmt"
	"image"
	"math/rand/v2"
)

// SampleImages creates n images of the given size filled with random
// colors, named sample_image_1.png, sample_image_2.png, and so on.
func SampleImages(rng *rand.Rand, n, width, height int) []Image {
	images := make([]Image, n)
	for i := range images {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p] = uint8(rng.IntN(256))
			img.Pix[p+1] = uint8(rng.IntN(256))
			img.Pix[p+2] = uint8(rng.IntN(256))
			img.Pix[p+3] = 0xff
		}
		images[i] = Image{Name: fmt.Sprintf("sample_image_%d.png", i+1), Pix: img}
	}
	return images
}

// SampleVectors creates n vectors of the given size with elements drawn
// uniformly from [-100, 100).
func SampleVectors(rng *rand.Rand, n, size int) [][]float64 {
	vectors := make([][]float64, n)
	for i := range vectors {
		v := make([]float64, size)
		for j := range v {
			v[j] = rng.Float64()*200 - 100
		}
		vectors[i] = v
	}
	return vectors
}

// SampleSearchVectors creates n vectors of the given size with elements
// drawn from [1, 1000]. Every third vector, starting with the first,
// contains 42 at a random position; every third vector, starting with the
// second, contains 100.
func SampleSearchVectors(rng *rand.Rand, n, size int) [][]int {
	vectors := make([][]int, n)
	for i := range vectors {
		v := make([]int, size)
		for j := range v {
			v[j] = 1 + rng.IntN(1000)
		}
		if size > 0 {
			switch i % 3 {
			case 0:
				v[rng.IntN(size)] = 42
			case 1:
				v[rng.IntN(size)] = 100
			}
		}
		vectors[i] = v
	}
	return vectors
}

// SampleObjects creates n objects with IDs 1 to n, heights between 10 and
// 200 m, masses between 0.1 and 50 kg, and drag coefficients between 0.1
// and 1.5.
func SampleObjects(rng *rand.Rand, n int) []Object {
	objects := make([]Object, n)
	for i := range objects {
		objects[i] = Object{
			ID:     i + 1,
			Height: 10 + rng.Float64()*190,
			Mass:   0.1 + rng.Float64()*49.9,
			Drag:   0.1 + rng.Float64()*1.4,
		}
	}
	return objects
}
