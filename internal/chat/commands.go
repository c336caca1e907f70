package chat

import (
	"errors"
	"strings"
	"unicode"
)

const (
	unknownUser = "UnknownUser"

	msgLoginRequired     = "You must be logged in to use this command."
	msgChatLoginRequired = "You must be logged in to send messages. Please register and login first."
	msgDuplicateUser     = "Username already exists. Please choose another."
	msgAccountLimit      = "Server capacity reached. Registration declined."
	msgUnknownUser       = "Username not found. Please register first."
	msgBadCredentials    = "Invalid password."
	msgAlreadyLoggedIn   = "User already logged in from another location."
	msgEmptyMessage      = "Message cannot be empty"
	msgActiveClients     = "Active clients:"
	msgNoClients         = "No clients are currently logged in."
)

type command struct {
	name        string
	description string
	public      bool // allowed before login
	audited     bool // written to the command log
	run         func(r *Registry, c *Client, args string)
}

// commandTable keeps the declaration order for help output.
type commandTable struct {
	order  []command
	byName map[string]command
}

func newCommandTable(sentinel byte) commandTable {
	p := string(sentinel)
	cmds := []command{
		{name: "help", description: "Display all available commands", public: true, audited: true, run: (*Registry).cmdHelp},
		{name: "register", description: "Register a new user account (usage: " + p + "register username password)", public: true, audited: true, run: (*Registry).cmdRegister},
		{name: "login", description: "Log in with registered credentials (usage: " + p + "login username password)", public: true, audited: true, run: (*Registry).cmdLogin},
		{name: "logout", description: "Log out and disconnect from the server", public: true, audited: true, run: (*Registry).cmdLogout},
		{name: "send", description: "Send a private message (usage: " + p + "send username message)", audited: true, run: (*Registry).cmdSend},
		{name: "getlist", description: "List the users currently logged in", audited: true, run: (*Registry).cmdGetList},
		{name: "getlog", description: "Replay the public message log", public: true, run: (*Registry).cmdGetLog},
	}
	t := commandTable{order: cmds, byName: make(map[string]command, len(cmds))}
	for _, cmd := range cmds {
		t.byName[cmd.name] = cmd
	}
	return t
}

// dispatch routes one decoded frame: sentinel-prefixed frames are commands,
// anything else is public chat.
func (r *Registry) dispatch(c *Client, payload []byte) {
	if len(payload) > 0 && payload[0] == r.opts.CommandChar {
		r.dispatchCommand(c, string(payload[1:]))
		return
	}
	r.publicMessage(c, string(payload))
}

func (r *Registry) dispatchCommand(c *Client, line string) {
	name, args := splitCommand(line)
	cmd, known := r.commands.byName[name]

	username, authed := r.accounts.UsernameOf(c.ID)
	if !known || cmd.audited {
		display := username
		if !authed {
			display = unknownUser
		}
		r.audit("User: " + display + ", Command: " + line)
	}

	if known && cmd.public {
		MessagesTotal.WithLabelValues(cmd.name).Inc()
		cmd.run(r, c, args)
		return
	}
	if !authed {
		r.sendText(c, msgLoginRequired)
		return
	}
	if !known {
		MessagesTotal.WithLabelValues("unknown").Inc()
		r.sendText(c, "Unknown command: "+name+". Type "+string(r.opts.CommandChar)+"help for a list of commands.")
		return
	}
	MessagesTotal.WithLabelValues(cmd.name).Inc()
	cmd.run(r, c, args)
}

func (r *Registry) cmdHelp(c *Client, _ string) {
	for _, cmd := range r.commands.order {
		r.sendText(c, cmd.name+" - "+cmd.description)
	}
}

func (r *Registry) cmdRegister(c *Client, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		r.sendText(c, "Usage: "+string(r.opts.CommandChar)+"register username password")
		return
	}

	switch err := r.accounts.Register(fields[0], fields[1]); {
	case errors.Is(err, ErrDuplicateUser):
		r.sendText(c, msgDuplicateUser)
	case errors.Is(err, ErrAccountLimit):
		r.sendText(c, msgAccountLimit)
	case err != nil:
		r.logger.Error("register failed", "username", fields[0], "error", err)
	default:
		r.logger.Info("user registered", "username", fields[0])
		r.sendText(c, "Registration successful! You can now login with "+string(r.opts.CommandChar)+"login username password")
	}
}

func (r *Registry) cmdLogin(c *Client, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		r.sendText(c, "Usage: "+string(r.opts.CommandChar)+"login username password")
		return
	}
	username := fields[0]
	previous, _ := r.accounts.UsernameOf(c.ID)

	switch err := r.accounts.Login(username, fields[1], c.ID); {
	case errors.Is(err, ErrUnknownUser):
		r.sendText(c, msgUnknownUser)
	case errors.Is(err, ErrBadCredentials):
		r.sendText(c, msgBadCredentials)
	case errors.Is(err, ErrAlreadyLoggedIn):
		r.logger.Warn("duplicate login rejected", "username", username, "id", c.ID)
		r.sendText(c, msgAlreadyLoggedIn)
		r.remove(c, ReasonDuplicateLogin)
	case err != nil:
		r.logger.Error("login failed", "username", username, "error", err)
	default:
		if previous != "" && previous != username {
			r.audit("User: " + previous + " has logged out.")
			r.logger.Info("user logged out", "username", previous, "id", c.ID)
		}
		AuthenticatedUsers.Set(float64(r.accounts.Authenticated()))
		r.logger.Info("user logged in", "username", username, "id", c.ID)
		r.sendText(c, "Login successful! Welcome to the chat, "+username+"!")
	}
}

func (r *Registry) cmdLogout(c *Client, _ string) {
	r.sendText(c, "Bye")
	r.remove(c, ReasonLogout)
}

func (r *Registry) cmdSend(c *Client, args string) {
	sender, _ := r.accounts.UsernameOf(c.ID)

	target, text := splitCommand(args)
	if target == "" {
		r.sendText(c, "Usage: "+string(r.opts.CommandChar)+"send <username> <message>")
		return
	}
	if strings.TrimSpace(text) == "" {
		r.sendText(c, msgEmptyMessage)
		return
	}
	text = strings.TrimLeft(text, " ")

	id, ok := r.accounts.ClientOf(target)
	receiver := r.clientByID(id)
	if !ok || receiver == nil {
		r.sendText(c, "User '"+target+"' not found or not online.")
		return
	}

	r.sendText(receiver, "[Private from "+sender+"]: "+text)
	r.sendText(c, "[Private to "+target+"]: "+text)
	r.record("[Private] " + sender + " to " + target + ": " + text)
}

func (r *Registry) cmdGetList(c *Client, _ string) {
	for _, line := range userListLines(r.accounts.Online()) {
		r.sendText(c, line)
	}
}

func (r *Registry) cmdGetLog(c *Client, _ string) {
	if r.opts.History == nil {
		return
	}
	lines, err := r.opts.History.Lines()
	if err != nil {
		r.logger.Warn("message log replay failed", "error", err)
		return
	}
	for _, line := range lines {
		r.sendText(c, line)
	}
}

func (r *Registry) publicMessage(c *Client, text string) {
	username, ok := r.accounts.UsernameOf(c.ID)
	if !ok {
		r.sendText(c, msgChatLoginRequired)
		return
	}
	MessagesTotal.WithLabelValues("chat").Inc()

	line := username + ": " + text
	r.record(line)
	for _, other := range r.clients {
		if other != c {
			r.sendText(other, line)
		}
	}
}

func userListLines(names []string) []string {
	lines := []string{msgActiveClients}
	if len(names) == 0 {
		return append(lines, msgNoClients)
	}
	for _, name := range names {
		lines = append(lines, "- "+name)
	}
	return lines
}

// splitCommand returns the first whitespace-delimited word of line and the
// text after it. The remainder keeps its leading separator.
func splitCommand(line string) (string, string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return line, ""
	}
	return line[:end], line[end:]
}
