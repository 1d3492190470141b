package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// CommandKind identifies which grammar a command body matched
type CommandKind int

const (
	KindUnrecognized CommandKind = iota
	KindDateRange
	KindNumberedReactions
	KindDefaultReactions
)

// Command is the parsed form of the text following a bot mention
type Command struct {
	Kind  CommandKind
	Month int
	Day   int
	Days  int // number of consecutive day labels to post
	Count int // number of numbered reactions to add
}

// DefaultDayCount is the day-label count used when day:N is omitted
const DefaultDayCount = 7

var (
	dateRangePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:\s+day:(\d+))?$`)
	numPattern       = regexp.MustCompile(`(?i)^num:(\d+)$`)
)

// ParseCommand parses a trimmed command body into exactly one Command
// variant. Matching is whole-string; grammars are mutually exclusive.
// Out-of-range counts yield a *ValidationError, not a parse failure.
func ParseCommand(body string) (Command, error) {
	body = strings.TrimSpace(body)

	if body == "" {
		return Command{Kind: KindDefaultReactions}, nil
	}

	if m := dateRangePattern.FindStringSubmatch(body); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return Command{}, &ValidationError{
				Input:  body,
				Advice: "日付の形式が正しくありません: `" + body + "`",
			}
		}
		days := DefaultDayCount
		if m[3] != "" {
			days, _ = strconv.Atoi(m[3])
			if days < 1 || days > 10 {
				return Command{}, &ValidationError{
					Input:  body,
					Advice: "日数は1から10の間で指定してください。",
				}
			}
		}
		return Command{Kind: KindDateRange, Month: month, Day: day, Days: days}, nil
	}

	if m := numPattern.FindStringSubmatch(body); m != nil {
		count, _ := strconv.Atoi(m[1])
		if count < 1 || count > 10 {
			return Command{}, &ValidationError{
				Input:  body,
				Advice: "数字は1から10の間で指定してください。",
			}
		}
		return Command{Kind: KindNumberedReactions, Count: count}, nil
	}

	return Command{Kind: KindUnrecognized}, nil
}

// StripMention extracts the command body following a mention of the bot.
// Returns false if the content does not mention the bot at all.
func StripMention(content, botID string) (string, bool) {
	if botID == "" {
		return "", false
	}
	pattern := regexp.MustCompile(`(?s)<@!?` + regexp.QuoteMeta(botID) + `>\s*(.*)`)
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
