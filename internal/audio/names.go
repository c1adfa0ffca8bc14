// internal/audio/names.go
//
// Deterministic audio filenames derived from column and ordinal indexes:
//   title_<letter>.mp3          one per category column
//   word_<letter><ordinal>.mp3  one per word; ordinal is 1-based per column
// Columns map to letters a–z; anything outside 0..25 has no filename.

package audio

import "strconv"

// Letter maps 0→'a' … 25→'z'. ok is false outside that range.
func Letter(i int) (byte, bool) {
	if i < 0 || i >= 26 {
		return 0, false
	}
	return byte('a' + i), true
}

// TitleFile returns the title audio filename for column col, or "".
func TitleFile(col int) string {
	l, ok := Letter(col)
	if !ok {
		return ""
	}
	return "title_" + string(l) + ".mp3"
}

// WordFile returns the word audio filename for (col, ordinal), or "".
func WordFile(col, ordinal int) string {
	l, ok := Letter(col)
	if !ok || ordinal < 1 {
		return ""
	}
	return "word_" + string(l) + strconv.Itoa(ordinal) + ".mp3"
}
