// Package explore implements the interactive exploring session: a
// liner-driven prompt dispatching to a dedicated cobra command tree,
// operating on the binary loaded by `dwarfview explore`.
package explore

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/hitzhangjie/dwarfview/pkg/symbol"
)

const (
	cmdGroupAnnotation = "cmd_group_annotation"

	cmdGroupInfo   = "1-info"
	cmdGroupOthers = "2-other"
	cmdGroupCobra  = "other"

	cmdGroupDelimiter = "-"

	prefix    = "dwarfview> "
	descShort = "dwarfview interactive exploring commands"
)

var exploreRootCmd = &cobra.Command{
	Use:   "help [command]",
	Short: descShort,
}

var (
	// CurrentSession the session driving the prompt loop
	CurrentSession *ExploreSession

	// Target the binary being explored
	Target *symbol.BinaryInfo
)

// ExploreSession interactive exploring session
type ExploreSession struct {
	done   chan bool
	prefix string
	root   *cobra.Command
	liner  *liner.State
	last   string

	defers []func()
}

// NewExploreSession creates the interactive manager used while exploring
func NewExploreSession() *ExploreSession {
	fn := func(cmd *cobra.Command, args []string) {
		fmt.Println(cmd.Short)
		fmt.Println()

		fmt.Println(cmd.Use)
		fmt.Println(cmd.Flags().FlagUsages())

		usage := helpMessageByGroups(cmd)
		fmt.Println(usage)
	}
	exploreRootCmd.SetHelpFunc(fn)

	return &ExploreSession{
		done:   make(chan bool),
		prefix: prefix,
		root:   exploreRootCmd,
		liner:  liner.NewLiner(),
		last:   "",
	}
}

// Start runs the prompt loop until Stop is called; an empty input
// repeats the last command.
func (s *ExploreSession) Start() {
	s.liner.SetCompleter(completer)
	s.liner.SetTabCompletionStyle(liner.TabPrints)

	defer func() {
		for idx := len(s.defers) - 1; idx >= 0; idx-- {
			s.defers[idx]()
		}
	}()

	for {
		select {
		case <-s.done:
			s.liner.Close()
			return
		default:
		}

		txt, err := s.liner.Prompt(s.prefix)
		if err != nil {
			panic(err)
		}

		txt = strings.TrimSpace(txt)
		if len(txt) != 0 {
			s.last = txt
			s.liner.AppendHistory(txt)
		} else {
			txt = s.last
		}

		s.root.SetArgs(strings.Split(txt, " "))
		s.root.Execute()
	}
}

// AtExit registers a function run when the session stops
func (s *ExploreSession) AtExit(fn func()) *ExploreSession {
	s.defers = append(s.defers, fn)
	return s
}

// Stop ends the session
func (s *ExploreSession) Stop() {
	close(s.done)
}

func completer(line string) []string {
	cmds := []string{}
	for _, c := range exploreRootCmd.Commands() {
		// complete cmd
		if strings.HasPrefix(c.Use, line) {
			cmds = append(cmds, strings.Split(c.Use, " ")[0])
		}
		// complete cmd's aliases
		for _, alias := range c.Aliases {
			if strings.HasPrefix(alias, line) {
				cmds = append(cmds, alias)
			}
		}
	}
	return cmds
}

// helpMessageByGroups groups the commands and renders the help message
// group by group
func helpMessageByGroups(cmd *cobra.Command) string {
	// key:group, val:sorted commands in same group
	groups := map[string][]string{}
	for _, c := range cmd.Commands() {
		// commands without a group go to the other group
		var groupName string
		v, ok := c.Annotations[cmdGroupAnnotation]
		if !ok {
			groupName = "other"
		} else {
			groupName = v
		}

		groupCmds := groups[groupName]
		groupCmds = append(groupCmds, fmt.Sprintf("  %-16s:%s", c.Name(), c.Short))
		sort.Strings(groupCmds)

		groups[groupName] = groupCmds
	}

	if len(groups[cmdGroupCobra]) != 0 {
		groups[cmdGroupOthers] = append(groups[cmdGroupOthers], groups[cmdGroupCobra]...)
	}
	delete(groups, cmdGroupCobra)

	groupNames := []string{}
	for k := range groups {
		groupNames = append(groupNames, k)
	}
	sort.Strings(groupNames)

	buf := bytes.Buffer{}
	for _, groupName := range groupNames {
		commands := groups[groupName]

		group := strings.Split(groupName, cmdGroupDelimiter)[1]
		buf.WriteString(fmt.Sprintf("- [%s]\n", group))

		for _, cmd := range commands {
			buf.WriteString(fmt.Sprintf("%s\n", cmd))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
