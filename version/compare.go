// Package version compares semantic versions and checks the player build is new enough.
package version

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Compare returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	type version struct {
		major, minor, patch int
	}

	parse := func(s string) (version, error) {
		var v version
		_, err := fmt.Sscanf(strings.TrimPrefix(s, "v"), "%d.%d.%d", &v.major, &v.minor, &v.patch)
		return v, err
	}

	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	pairs := lo.Zip2(
		[]int{av.major, av.minor, av.patch},
		[]int{bv.major, bv.minor, bv.patch},
	)

	for _, pair := range pairs {
		switch {
		case pair.A > pair.B:
			return 1, nil
		case pair.A < pair.B:
			return -1, nil
		}
	}

	return 0, nil
}
