package mnist

// Synthetic creates a small synthetic dataset with one distinct bright-band
// pattern per digit, repeated perSample times each.
//
// This is NOT realistic MNIST data. It exists so the training pipeline can
// be exercised without the real IDX files: the patterns are linearly
// separable, so even a briefly trained model classifies them well above
// chance.
func Synthetic(perClass int) *Dataset {
	numSamples := NumClasses * perClass
	images := make([][]float64, numSamples)
	labels := make([]int, numSamples)

	for i := 0; i < numSamples; i++ {
		digit := i % NumClasses
		images[i] = make([]float64, ImageSize)
		labels[i] = digit

		// Fill a horizontal band whose position depends on the digit
		startRow := digit * 2
		for row := startRow; row < startRow+8 && row < ImageRows; row++ {
			for col := 5; col < 23; col++ {
				images[i][row*ImageCols+col] = 0.8
			}
		}
	}

	return &Dataset{Images: images, Labels: labels}
}
