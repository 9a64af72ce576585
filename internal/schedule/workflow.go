package schedule

import (
	"errors"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoSchedule = errors.New("workflow has no cron schedule")

// quotedCronPattern finds a quoted cron value in text that does not parse
// as YAML.
var quotedCronPattern = regexp.MustCompile(`cron:\s*['"]([^'"\n]+)['"]`)

// CronMatch is the first cron expression of a workflow file and its byte
// span within the text.
type CronMatch struct {
	Expression string
	Line       int
	Count      int

	start int
	end   int
	// plain is set for an unquoted value, which must be quoted on
	// replacement because a leading "*" would read as a YAML alias.
	plain bool
}

// FindCron locates the first on.schedule[].cron value. Count reports how
// many cron entries the workflow has.
func FindCron(text string) (CronMatch, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return findQuotedCron(text)
	}

	nodes := cronNodes(&root)
	if len(nodes) == 0 {
		return CronMatch{}, ErrNoSchedule
	}

	first := nodes[0]
	start, ok := valueOffset(text, first)
	if !ok {
		return findQuotedCron(text)
	}
	return CronMatch{
		Expression: first.Value,
		Line:       first.Line,
		Count:      len(nodes),
		start:      start,
		end:        start + len(first.Value),
		plain:      first.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0,
	}, nil
}

// ReplaceCron substitutes the first cron expression and leaves every other
// byte of the file as it was. An unquoted value is replaced by a single
// quoted one.
func ReplaceCron(text, expression string) (string, error) {
	if err := ValidateReplacement(expression); err != nil {
		return "", err
	}
	match, err := FindCron(text)
	if err != nil {
		return "", err
	}
	replacement := strings.TrimSpace(expression)
	if match.plain {
		replacement = "'" + replacement + "'"
	}
	return text[:match.start] + replacement + text[match.end:], nil
}

func cronNodes(root *yaml.Node) []*yaml.Node {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	triggers := mappingValue(root.Content[0], "on")
	if triggers == nil {
		return nil
	}
	schedules := mappingValue(triggers, "schedule")
	if schedules == nil || schedules.Kind != yaml.SequenceNode {
		return nil
	}

	var nodes []*yaml.Node
	for _, entry := range schedules.Content {
		if cron := mappingValue(entry, "cron"); cron != nil && cron.Kind == yaml.ScalarNode {
			nodes = append(nodes, cron)
		}
	}
	return nodes
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// valueOffset finds the byte offset of a scalar's value on its own line.
// Block scalars spanning several lines are not found.
func valueOffset(text string, node *yaml.Node) (int, bool) {
	if node.Value == "" || node.Line < 1 {
		return 0, false
	}
	lines := strings.SplitAfter(text, "\n")
	if node.Line > len(lines) {
		return 0, false
	}

	lineStart := 0
	for _, line := range lines[:node.Line-1] {
		lineStart += len(line)
	}
	line := lines[node.Line-1]

	keyIndex := strings.Index(line, "cron")
	if keyIndex < 0 {
		return 0, false
	}
	valueIndex := strings.Index(line[keyIndex:], node.Value)
	if valueIndex < 0 {
		return 0, false
	}
	return lineStart + keyIndex + valueIndex, true
}

func findQuotedCron(text string) (CronMatch, error) {
	all := quotedCronPattern.FindAllStringSubmatchIndex(text, -1)
	if len(all) == 0 {
		return CronMatch{}, ErrNoSchedule
	}
	first := all[0]
	return CronMatch{
		Expression: text[first[2]:first[3]],
		Line:       strings.Count(text[:first[2]], "\n") + 1,
		Count:      len(all),
		start:      first[2],
		end:        first[3],
	}, nil
}
