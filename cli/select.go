package cli

import (
	"slices"
	"strings"

	"facette.io/natsort"
	"github.com/manifoldco/promptui"
)

const doneChoice = "[Done]"

// MultiSelect lets the user pick any number of choices, one per round, and
// returns them in the order they were given.
func (t Terminal) MultiSelect(label string, choices ...string) ([]string, error) {
	if len(choices) == 0 {
		return nil, nil
	}

	remaining := sortedUnique(choices)
	picked := make(map[string]bool, len(remaining))

	for len(remaining) > 0 {
		items := append([]string{doneChoice}, remaining...)

		sel := &promptui.Select{
			Label: label,
			Items: items,
			Searcher: func(input string, index int) bool {
				if index == 0 || input == "" {
					return false
				}

				return strings.HasPrefix(items[index], input)
			},
			Stdin:  t.Stdin,
			Stdout: t.Stdout,
		}

		idx, value, err := sel.Run()
		if err != nil {
			return nil, err
		}

		if idx == 0 {
			break
		}

		picked[value] = true
		remaining = slices.DeleteFunc(remaining, func(s string) bool { return s == value })
	}

	return selected(choices, picked), nil
}

func sortedUnique(choices []string) []string {
	out := slices.Clone(choices)
	slices.SortFunc(out, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natsort.Compare(a, b):
			return -1
		default:
			return 1
		}
	})

	return slices.Compact(out)
}

func selected(choices []string, picked map[string]bool) []string {
	var out []string

	for _, c := range choices {
		if picked[c] {
			out = append(out, c)
			picked[c] = false
		}
	}

	return out
}
