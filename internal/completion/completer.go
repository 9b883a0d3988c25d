// Package completion provides tab completion for command arguments and
// flags. Completions are static: nothing here touches the network or
// loads the full app, so shells get answers fast.
package completion

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/deviantart"
)

// FeedCompletion completes browse feed names.
func FeedCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return filterPrefix(deviantart.BrowseTypes(), toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// FormatCompletion completes output format names.
func FormatCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		formats := []string{"auto", "json", "yaml", "styled", "quiet"}
		return filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// ConfigKeyCompletion completes config key names.
func ConfigKeyCompletion(keys []string) cobra.CompletionFunc {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return filterPrefix(sorted, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func filterPrefix(candidates []string, prefix string) []cobra.Completion {
	out := make([]cobra.Completion, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, cobra.Completion(c))
		}
	}
	return out
}
