package csr

// FindIndex searches key in the sorted span arr[low:high] and returns its
// absolute index, or -1 if key is not present.
func FindIndex(arr []int32, key int32, low, high int) int {
	if low < 0 {
		low = 0
	}
	if high > len(arr) {
		high = len(arr)
	}
	for low < high {
		mid := int(uint(low+high) >> 1)
		switch {
		case arr[mid] == key:
			return mid
		case arr[mid] < key:
			low = mid + 1
		default:
			high = mid
		}
	}
	return -1
}

// FindInsert returns the position within arr[low:high] at which key has to be
// inserted to keep the span sorted. For an empty span this is low; if key is
// already present, the position of the first occurrence is returned.
func FindInsert(arr []int32, key int32, low, high int) int {
	if low < 0 {
		low = 0
	}
	if high > len(arr) {
		high = len(arr)
	}
	for low < high {
		mid := int(uint(low+high) >> 1)
		if arr[mid] < key {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}
