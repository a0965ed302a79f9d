package digest

// Split cuts text into consecutive pieces of at most size characters (runes).
// Boundaries fall at fixed offsets with no regard for words or markup, so
// joining the pieces in order restores text exactly.
func Split(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	var (
		chunks []string
		start  int
		count  int
	)
	for i := range text {
		if count == size {
			chunks = append(chunks, text[start:i])
			start = i
			count = 0
		}
		count++
	}
	return append(chunks, text[start:])
}
