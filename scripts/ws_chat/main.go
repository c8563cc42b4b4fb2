package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/log"
	"github.com/vovakirdan/palchat-server/internal/proto"
)

const usage = `Commands:
  /nick NAME            change nickname
  /create NAME          create a public channel
  /create! NAME         create a private channel
  /join NAME            join a channel
  /invite NAME USER     invite USER to private channel NAME
  /kick NAME USER       remove USER from channel NAME
  /leave NAME           leave a channel
  /use NAME             send plain lines to channel NAME
Anything else is sent as a message to the current channel.`

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	logger := log.New("info")
	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("ws_chat")
		os.Exit(1)
	}
}

func run(logger *zerolog.Logger) error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	nick := flag.String("nick", "", "nickname to take after connecting")
	channel := flag.String("channel", "", "channel to join after connecting")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	current := *channel
	var startup []string
	if *nick != "" {
		startup = append(startup, "/nick "+*nick)
	}
	if *channel != "" {
		startup = append(startup, "/join "+*channel)
	}
	for _, line := range startup {
		inbound, _, err := parseLine(line, current)
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, conn, inbound); err != nil {
			return fmt.Errorf("send %s: %w", inbound.Type, err)
		}
	}

	fmt.Printf("Connected to %s\n%s\n", *addr, usage)

	go func() {
		defer cancel()
		readLoop(ctx, conn, logger)
	}()

	writeLoop(ctx, conn, current, logger)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

// parseLine turns one line of input into a frame. It returns the channel plain
// lines should go to afterwards.
func parseLine(line, current string) (proto.Inbound, string, error) {
	if !strings.HasPrefix(line, "/") {
		if current == "" {
			return proto.Inbound{}, current, errors.New("no current channel, use /join or /use first")
		}
		return inbound(proto.InboundTypeMsg, proto.MsgData{Channel: current, Text: line}, current)
	}

	fields := strings.Fields(line)
	args := fields[1:]
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s expects %d argument(s)", fields[0], n)
		}
		return nil
	}

	switch fields[0] {
	case "/nick":
		if err := need(1); err != nil {
			return proto.Inbound{}, current, err
		}
		return inbound(proto.InboundTypeNick, proto.NickData{Nickname: args[0]}, current)
	case "/create", "/create!":
		if err := need(1); err != nil {
			return proto.Inbound{}, current, err
		}
		return inbound(proto.InboundTypeCreate, proto.CreateData{Channel: args[0], Private: fields[0] == "/create!"}, args[0])
	case "/join":
		if err := need(1); err != nil {
			return proto.Inbound{}, current, err
		}
		return inbound(proto.InboundTypeJoin, proto.ChannelData{Channel: args[0]}, args[0])
	case "/leave":
		if err := need(1); err != nil {
			return proto.Inbound{}, current, err
		}
		next := current
		if next == args[0] {
			next = ""
		}
		return inbound(proto.InboundTypeLeave, proto.ChannelData{Channel: args[0]}, next)
	case "/invite", "/kick":
		if err := need(2); err != nil {
			return proto.Inbound{}, current, err
		}
		typ := proto.InboundTypeInvite
		if fields[0] == "/kick" {
			typ = proto.InboundTypeKick
		}
		return inbound(typ, proto.TargetData{Channel: args[0], User: args[1]}, current)
	case "/use":
		if err := need(1); err != nil {
			return proto.Inbound{}, current, err
		}
		return proto.Inbound{}, args[0], nil
	default:
		return proto.Inbound{}, current, fmt.Errorf("unknown command %s", fields[0])
	}
}

func inbound(typ string, data any, next string) (proto.Inbound, string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return proto.Inbound{}, next, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return proto.Inbound{Type: typ, Data: payload}, next, nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, logger *zerolog.Logger) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			logger.Error().Err(err).Msg("read error")
			return
		}
		fmt.Println(render(f))
	}
}

func render(f frame) string {
	if f.Type == proto.OutboundTypeError && f.Error != nil {
		return fmt.Sprintf("! %s failed: %s (%s)", f.Error.Command, f.Error.Msg, f.Error.Code)
	}

	switch f.Event {
	case proto.EventConnected:
		var evt proto.EventConnectedData
		if json.Unmarshal(f.Data, &evt) == nil {
			return "* you are " + evt.User
		}
	case proto.EventDisconnected:
		var evt proto.EventDisconnectedData
		if json.Unmarshal(f.Data, &evt) == nil {
			return "* " + evt.User + " disconnected"
		}
	case proto.EventNick:
		var evt proto.EventNickData
		if json.Unmarshal(f.Data, &evt) == nil {
			return fmt.Sprintf("* %s is now %s", evt.User, evt.Nickname)
		}
	case proto.EventCreate:
		var evt proto.EventCreateData
		if json.Unmarshal(f.Data, &evt) == nil {
			kind := "public"
			if evt.Private {
				kind = "private"
			}
			return fmt.Sprintf("[%s] created %s channel", evt.Channel, kind)
		}
	case proto.EventNames:
		var evt proto.EventNamesData
		if json.Unmarshal(f.Data, &evt) == nil {
			return fmt.Sprintf("[%s] %s joined via %s, owner %s, members: %s",
				evt.Channel, evt.User, evt.Via, evt.Owner, strings.Join(evt.Users, ", "))
		}
	case proto.EventLeave:
		var evt proto.EventLeaveData
		if json.Unmarshal(f.Data, &evt) == nil {
			return fmt.Sprintf("[%s] %s left", evt.Channel, evt.User)
		}
	case proto.EventKick:
		var evt proto.EventKickData
		if json.Unmarshal(f.Data, &evt) == nil {
			return fmt.Sprintf("[%s] %s kicked %s", evt.Channel, evt.User, evt.Target)
		}
	case proto.EventMessage:
		var evt proto.EventMessageData
		if json.Unmarshal(f.Data, &evt) == nil {
			return fmt.Sprintf("[%s] %s: %s", evt.Channel, evt.User, evt.Text)
		}
	}
	return fmt.Sprintf("event=%s data=%s", f.Event, string(f.Data))
}

func writeLoop(ctx context.Context, conn *websocket.Conn, current string, logger *zerolog.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			in, next, err := parseLine(line, current)
			current = next
			if err != nil {
				fmt.Println("!", err)
				continue
			}
			if in.Type == "" {
				continue
			}
			if err := wsjson.Write(ctx, conn, in); err != nil {
				logger.Error().Err(err).Msg("send error")
				return
			}
		}
	}
}
