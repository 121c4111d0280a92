package emptyletters

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ReadNumbers reads one system number per line. Surrounding whitespace,
// blank lines and lines starting with # are ignored, duplicates are dropped.
func ReadNumbers(r io.Reader) ([]string, error) {
	var (
		numbers []string
		seen    = make(map[string]bool)
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		numbers = append(numbers, line)
	}
	return numbers, scanner.Err()
}

// Exclude returns the numbers not contained in excluded, in order.
func Exclude(numbers, excluded []string) []string {
	skip := make(map[string]bool, len(excluded))
	for _, n := range excluded {
		skip[n] = true
	}
	var result []string
	for _, n := range numbers {
		if !skip[n] {
			result = append(result, n)
		}
	}
	return result
}

// LoadNumbers reads the numbers to work with from a file and removes those
// listed in an exclude file. A missing exclude file means nothing is excluded.
func LoadNumbers(numbersFile, excludeFile string) ([]string, error) {
	numbers, err := readNumbersFile(numbersFile)
	if err != nil {
		return nil, err
	}
	if excludeFile == "" {
		return numbers, nil
	}
	excluded, err := readNumbersFile(excludeFile)
	switch {
	case os.IsNotExist(err):
		return numbers, nil
	case err != nil:
		return nil, err
	}
	return Exclude(numbers, excluded), nil
}

func readNumbersFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadNumbers(file)
}
