package title

import (
	"fmt"
	"strings"
	"unicode"

	"golfwear-extractor/internal/textutil"
)

// Report is the validator verdict. Problems is empty when Valid.
type Report struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// Validate re-checks the title contract: length band, single marker,
// allowed characters and a closed-set ending.
func Validate(title string) Report {
	var problems []string

	if n := textutil.RuneLen(title); n < minLength || n > maxLength {
		problems = append(problems, fmt.Sprintf("length %d outside [%d,%d]", n, minLength, maxLength))
	}

	if c := strings.Count(title, Marker); c != 1 {
		problems = append(problems, fmt.Sprintf("marker %s appears %d times", Marker, c))
	}

	for _, r := range title {
		if unicode.Is(unicode.Latin, r) {
			problems = append(problems, fmt.Sprintf("contains Latin letter %q", r))
			break
		}
	}
	for _, r := range title {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			problems = append(problems, fmt.Sprintf("contains separator or symbol %q", r))
			break
		}
	}

	if !hasEnding(title) {
		problems = append(problems, "does not end with a category word")
	}

	return Report{Valid: len(problems) == 0, Problems: problems}
}

func hasEnding(title string) bool {
	for _, e := range Endings() {
		if strings.HasSuffix(title, e) {
			return true
		}
	}
	return false
}
