package models

import "strings"

// CommandType enumerates the intents the text front end can push into the core.
type CommandType string

const (
	CommandLogin    CommandType = "login"
	CommandLogout   CommandType = "logout"
	CommandRegister CommandType = "register"
	CommandList     CommandType = "list"
	CommandSearch   CommandType = "search"
	CommandStats    CommandType = "stats"
	CommandRefresh  CommandType = "refresh"
	CommandNew      CommandType = "new"
	CommandEdit     CommandType = "edit"
	CommandSet      CommandType = "set"
	CommandSubmit   CommandType = "submit"
	CommandCancel   CommandType = "cancel"
	CommandDelete   CommandType = "delete"
	CommandConfirm  CommandType = "confirm"
	CommandStatus   CommandType = "status"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

var knownCommands = map[string]CommandType{
	string(CommandLogin):    CommandLogin,
	string(CommandLogout):   CommandLogout,
	string(CommandRegister): CommandRegister,
	string(CommandList):     CommandList,
	"ls":                    CommandList,
	string(CommandSearch):   CommandSearch,
	"find":                  CommandSearch,
	string(CommandStats):    CommandStats,
	string(CommandRefresh):  CommandRefresh,
	string(CommandNew):      CommandNew,
	"add":                   CommandNew,
	string(CommandEdit):     CommandEdit,
	string(CommandSet):      CommandSet,
	string(CommandSubmit):   CommandSubmit,
	"save":                  CommandSubmit,
	string(CommandCancel):   CommandCancel,
	string(CommandDelete):   CommandDelete,
	"rm":                    CommandDelete,
	string(CommandConfirm):  CommandConfirm,
	string(CommandStatus):   CommandStatus,
	string(CommandHelp):     CommandHelp,
	"?":                     CommandHelp,
}

// Command represents a parsed intent typed by the user.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from a line of text. Only the command word is
// case-folded; arguments keep their case since they may be names or passwords.
func ParseCommand(line string) Command {
	tokens := strings.Fields(strings.TrimSpace(line))
	cmd := Command{Raw: line, Type: CommandUnknown}

	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := knownCommands[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
