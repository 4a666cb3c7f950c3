package ml

import "math/rand"

// StratifiedSplit shuffles and splits the dataset per class so the
// train and test partitions preserve the class proportions.
func StratifiedSplit(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	rnd := rand.New(rand.NewSource(seed))
	for _, label := range []int{0, 1} {
		indexes := byClass[label]
		if len(indexes) == 0 {
			continue
		}
		rnd.Shuffle(len(indexes), func(i, j int) {
			indexes[i], indexes[j] = indexes[j], indexes[i]
		})
		testCount := int(float64(len(indexes)) * testRatio)
		// Keep at least one holdout row per class when there is
		// anything to hold out.
		if testCount == 0 && len(indexes) > 1 {
			testCount = 1
		}
		for k, idx := range indexes {
			if k < testCount {
				testX = append(testX, features[idx])
				testY = append(testY, labels[idx])
			} else {
				trainX = append(trainX, features[idx])
				trainY = append(trainY, labels[idx])
			}
		}
	}
	return trainX, trainY, testX, testY
}
