package yolo2coco

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadCategories reads the class names the Model was trained with from the
// given text file and builds the category list from them.  It should contain
// one class name per line, the line order defines the category ID.
func LoadCategories(file string) ([]Category, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, &FileError{File: file,
			Err: fmt.Errorf("%w: error opening class list: %w", ErrInputFormat, err)}
	}

	defer f.Close()

	// create a scanner to read the file, this strips the line terminators
	scanner := bufio.NewScanner(f)

	var lines []string

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, &FileError{File: file,
			Err: fmt.Errorf("%w: error reading class list: %w", ErrInputFormat, err)}
	}

	cats, err := BuildCategories(lines)

	if err != nil {
		return nil, &FileError{File: file, Err: err}
	}

	return cats, nil
}

// BuildCategories assigns each class name an ID equal to its 0-based
// position.  Trailing line terminators are removed and blank lines at the
// end of the list are ignored.  Blank lines before the last class name and
// duplicate names are rejected as they would shift or alias category IDs.
func BuildCategories(lines []string) ([]Category, error) {

	names := make([]string, len(lines))

	for i, line := range lines {
		names[i] = strings.TrimRight(line, "\r\n")
	}

	// drop blank lines at end of file
	for len(names) > 0 && strings.TrimSpace(names[len(names)-1]) == "" {
		names = names[:len(names)-1]
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: class list is empty", ErrInputFormat)
	}

	cats := make([]Category, 0, len(names))
	seen := make(map[string]int, len(names))

	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: blank class name on line %d", ErrInputFormat, i+1)
		}

		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: class %q on line %d duplicates line %d",
				ErrInputFormat, name, i+1, prev+1)
		}

		seen[name] = i
		cats = append(cats, Category{ID: i, Name: name})
	}

	return cats, nil
}
