package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/matchmaker/internal/profile"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every known user",
	Run: func(cmd *cobra.Command, _ []string) {
		e := setup()
		defer e.close()

		users := e.store.AllUsers()
		sort.SliceStable(users, func(i, j int) bool { return lessID(users[i].ID, users[j].ID) })

		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			printJSON(e, users)
			return
		}

		printProfiles(users, false)

		if showBuckets, _ := cmd.Flags().GetBool("buckets"); showBuckets {
			sizes := e.store.Buckets()
			keys := make([]string, 0, len(sizes))
			for key := range sizes {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			fmt.Println()
			for _, key := range keys {
				fmt.Printf("%-40s %d\n", key, sizes[key])
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)

	usersCmd.Flags().Bool("buckets", false, "also print bucket sizes")
	usersCmd.Flags().Bool("output-json", false, "print users as json")
}

func printProfiles(users []profile.Profile, withScore bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	header := "ID\tNAME\tAGE\tLOCATION\tGOAL\tLANGUAGE\tINTERESTS"
	if withScore {
		header += "\tSCORE"
	}
	fmt.Fprintln(w, header)

	for _, u := range users {
		line := fmt.Sprintf("%s\t%s\t%d\t%s\t%s\t%s\t%s",
			u.ID, u.Name, u.Age, u.Location, u.RelationshipGoal, u.Language, strings.Join(u.Interests, ","),
		)
		if withScore {
			line += fmt.Sprintf("\t%.1f", u.MatchScore)
		}
		fmt.Fprintln(w, line)
	}
}

func printJSON(e *engine, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		e.fatal("encoding output", zap.Error(err))
	}
}

// lessID orders numeric ids numerically and falls back to string order.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
