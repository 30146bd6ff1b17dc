package bot

import (
	"strconv"
	"strings"
)

// Command is one parsed callback. Callback data uses the "name|arg|arg"
// format; parsing happens once here so handlers never touch the raw string.
type Command struct {
	Name string
	Args []string
}

func parseCommand(data string) Command {
	parts := strings.Split(data, "|")
	return Command{Name: parts[0], Args: parts[1:]}
}

func (c Command) Arg(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

func (c Command) Int64Arg(i int) int64 {
	n, _ := strconv.ParseInt(c.Arg(i), 10, 64)
	return n
}
