package core

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseDecimal parses a decimal that the hosted backend may serialize as either a number
// or a string ("4.50"). Missing or unparsable values degrade to 0.
func ParseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Decimal is a float64 that also unmarshals from the quoted form ("4.50") some
// backend clients send for money fields.
type Decimal float64

func (d *Decimal) UnmarshalJSON(b []byte) error {
	*d = Decimal(ParseDecimal(strings.Trim(string(b), `"`)))
	return nil
}

// Getwd walks up from the current directory until it finds the project root (go.mod).
// go-test changes the working directory to the test package being run during tests...
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // fall back to the actual cwd (installed binary)
		}
		currDir = newDir
	}
}
