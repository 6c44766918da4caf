package backend

import (
	"fmt"
	"strings"
)

// Location places a legend inside its subplot.
type Location int

const (
	Best Location = iota
	UpperRight
	UpperLeft
	LowerLeft
	LowerRight
)

var locationNames = map[string]Location{
	"best":        Best,
	"upper right": UpperRight,
	"upper left":  UpperLeft,
	"lower left":  LowerLeft,
	"lower right": LowerRight,
}

// ParseLocation accepts the usual legend spellings ("best", "upper right",
// "upper-left", "lowerleft", ...).
func ParseLocation(s string) (Location, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return Best, nil
	}
	if l, ok := locationNames[key]; ok {
		return l, nil
	}
	for name, l := range locationNames {
		if strings.ReplaceAll(name, " ", "") == key {
			return l, nil
		}
	}
	return Best, fmt.Errorf("unknown legend location %q", s)
}

func (l Location) String() string {
	for name, v := range locationNames {
		if v == l {
			return name
		}
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// Top reports whether the legend sits at the top of the subplot. Best
// resolves to the upper right corner.
func (l Location) Top() bool { return l == Best || l == UpperRight || l == UpperLeft }

// Left reports whether the legend sits at the left edge of the subplot.
func (l Location) Left() bool { return l == UpperLeft || l == LowerLeft }
