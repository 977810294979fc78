package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/innercanvas/innercanvas/internal/api"
	"github.com/innercanvas/innercanvas/internal/diary"
	"github.com/innercanvas/innercanvas/internal/journal"
	"github.com/innercanvas/innercanvas/internal/mood"
	"github.com/innercanvas/innercanvas/internal/session"
)

const helpText = `Commands:
  /login <username> <password>   Sign in
  /logout                        Sign out
  /signup <user> <pass> <email> <YYYY-MM-DD>
  /check <username>              Check username availability
  /whoami                        Show the current session
  /date [YYYY-MM-DD]             Select a date (default: today)
  /write <text>                  Write today's entry and get AI counseling
  /show                          Show the selected entry and chat
  /calendar <year> <month>       Monthly mood colors
  /profile [email] [YYYY-MM-DD]  Update profile fields
  /password <current> <new>      Change password
  /inquiry [<title> | <content>] List or file support inquiries
  /admin                         List all inquiries (admin)
  /answer <id> <text>            Answer an inquiry (admin)
  /review [n]                    Recent archived entries
  /search <query>                Search archived entries
  /quit                          Exit
Anything else is sent to the AI counselor as chat.`

func runREPL(ctx context.Context, env *runtimeEnv) {
	log.Println("📔 Inner Canvas ready. /help for commands.")

	// Start on today so guests can write immediately.
	today := journal.DateString(time.Now())
	if err := env.Controller.LoadDate(ctx, today); err != nil {
		log.Printf("⚠️  Failed to load today: %v", err)
	}

	s := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !s.Scan() {
			break
		}
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		if strings.HasPrefix(line, "/") {
			runCommand(ctx, env, line)
		} else {
			sendChat(ctx, env, line)
		}
		fmt.Println()
	}
}

func runCommand(ctx context.Context, env *runtimeEnv, line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch cmd {
	case "/help":
		fmt.Println(helpText)

	case "/login":
		if len(args) != 2 {
			fmt.Println("usage: /login <username> <password>")
			return
		}
		login(ctx, env, args[0], args[1])

	case "/logout":
		logout(ctx, env)

	case "/signup":
		if len(args) != 4 {
			fmt.Println("usage: /signup <user> <pass> <email> <YYYY-MM-DD>")
			return
		}
		signup(ctx, env, args)

	case "/check":
		if len(args) != 1 {
			fmt.Println("usage: /check <username>")
			return
		}
		available, err := env.API.CheckUsername(ctx, args[0])
		if err != nil {
			fmt.Println(api.UserMessage(err))
			return
		}
		if available {
			fmt.Printf("✅ %s is available\n", args[0])
		} else {
			fmt.Printf("❌ %s is taken\n", args[0])
		}

	case "/whoami":
		whoami(env)

	case "/date":
		date := journal.DateString(time.Now())
		if len(args) == 1 {
			if _, err := time.Parse("2006-01-02", args[0]); err != nil {
				fmt.Println("usage: /date [YYYY-MM-DD]")
				return
			}
			date = args[0]
		}
		if err := env.Controller.LoadDate(ctx, date); err != nil {
			fmt.Println(api.UserMessage(err))
			return
		}
		showEntry(env)

	case "/write":
		if rest == "" {
			fmt.Println("usage: /write <text>")
			return
		}
		write(ctx, env, rest)

	case "/show":
		showEntry(env)

	case "/calendar":
		if len(args) != 2 {
			fmt.Println("usage: /calendar <year> <month>")
			return
		}
		calendar(ctx, env, args[0], args[1])

	case "/profile":
		profile(ctx, env, args)

	case "/password":
		if len(args) != 2 {
			fmt.Println("usage: /password <current> <new>")
			return
		}
		changePassword(ctx, env, args[0], args[1])

	case "/inquiry":
		inquiry(ctx, env, rest)

	case "/admin":
		adminInquiries(ctx, env)

	case "/answer":
		if len(args) < 2 {
			fmt.Println("usage: /answer <id> <text>")
			return
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("usage: /answer <id> <text>")
			return
		}
		answer := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		if err := env.API.AnswerInquiry(ctx, id, answer); err != nil {
			fmt.Println(api.UserMessage(err))
			return
		}
		fmt.Println("✅ Answer posted")

	case "/review":
		limit := 7
		if len(args) == 1 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				limit = n
			}
		}
		review(ctx, env, limit)

	case "/search":
		if rest == "" {
			fmt.Println("usage: /search <query>")
			return
		}
		search(env, rest)

	default:
		fmt.Printf("unknown command %s (/help for commands)\n", cmd)
	}
}

func login(ctx context.Context, env *runtimeEnv, username, password string) {
	env.Session.LoginStart()
	res, err := env.API.Login(ctx, username, password)
	if err != nil {
		env.Session.LoginFailure(api.UserMessage(err))
		fmt.Println(api.UserMessage(err))
		return
	}
	env.Session.LoginSuccess(res.User, res.AccessToken)
	fmt.Printf("✅ Logged in as %s\n", res.User.Username)

	// Reload the selection so the member's stored entry replaces the guest draft.
	if date := env.Controller.SelectedDate(); date != "" {
		if err := env.Controller.LoadDate(ctx, date); err != nil {
			log.Printf("⚠️  Failed to reload %s: %v", date, err)
		}
	}
}

func logout(ctx context.Context, env *runtimeEnv) {
	if err := env.API.Logout(ctx); err != nil {
		log.Printf("⚠️  Server logout failed: %v", err)
	}
	env.Session.Logout()
	env.Controller.Reset()
	fmt.Println("👋 Logged out")
}

func signup(ctx context.Context, env *runtimeEnv, args []string) {
	available, err := env.API.CheckUsername(ctx, args[0])
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	if !available {
		fmt.Printf("❌ %s is taken\n", args[0])
		return
	}
	req := api.SignupRequest{Username: args[0], Password: args[1], Email: args[2], BirthDate: args[3]}
	if err := env.API.Signup(ctx, req); err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	fmt.Println("✅ Account created, /login to sign in")
}

func whoami(env *runtimeEnv) {
	st := env.Session.Snapshot()
	if !st.IsAuthenticated || st.User == nil {
		fmt.Println("Browsing as a guest. Entries are not saved; /login to keep them.")
		return
	}
	u := st.User
	fmt.Printf("%s <%s>", u.Username, u.Email)
	if u.Role != "" {
		fmt.Printf(" [%s]", u.Role)
	}
	fmt.Println()
}

func write(ctx context.Context, env *runtimeEnv, text string) {
	doodlePNG := env.Doodle()
	err := env.Controller.SaveAndAnalyze(ctx, text, "", doodlePNG)
	switch {
	case err == nil:
	case errors.Is(err, journal.ErrNotToday):
		fmt.Println("Past entries are read-only; /date to come back to today.")
		return
	case errors.Is(err, journal.ErrAlreadyWritten):
		fmt.Println("Today's entry is already written. Talk to the counselor instead.")
		return
	default:
		fmt.Println(api.UserMessage(err))
		return
	}

	st := env.Diary.Snapshot()
	if st.CurrentDiary != nil && st.CurrentDiary.DiaryID == diary.UnsavedID {
		fmt.Println("(guest entry, not saved — /login to keep your diary)")
	}
	printTurns(st.Turns)
}

func sendChat(ctx context.Context, env *runtimeEnv, message string) {
	err := env.Controller.SendChat(ctx, message)
	switch {
	case err == nil:
	case errors.Is(err, journal.ErrChatNotReady):
		fmt.Println("Write today's entry first with /write; chat opens after the analysis.")
		return
	case errors.Is(err, journal.ErrChatBusy):
		fmt.Println("The counselor is still responding.")
		return
	default:
		fmt.Println(api.UserMessage(err))
		return
	}

	st := env.Diary.Snapshot()
	if len(st.Turns) > 0 {
		last := st.Turns[len(st.Turns)-1]
		fmt.Printf("ai> %s\n", last.Message)
	}
}

func showEntry(env *runtimeEnv) {
	date := env.Controller.SelectedDate()
	st := env.Diary.Snapshot()

	if st.CurrentDiary == nil || (st.CurrentDiary.DiaryID == diary.UnsavedID && st.CurrentDiary.DiaryText == "") {
		if env.Controller.CanWrite() {
			fmt.Printf("%s — no entry yet, /write to start\n", date)
		} else {
			fmt.Printf("%s — no entry\n", date)
		}
		return
	}

	e := st.CurrentDiary
	fmt.Printf("%s  mood %s\n%s\n", date, e.MoodColor, e.DiaryText)
	if e.DoodleURL != "" {
		fmt.Printf("doodle: %s\n", e.DoodleURL)
	}
	printTurns(st.Turns)
}

func printTurns(turns []diary.Turn) {
	for _, t := range turns {
		fmt.Printf("%s> %s\n", t.Sender, t.Message)
	}
}

func calendar(ctx context.Context, env *runtimeEnv, yearArg, monthArg string) {
	year, err1 := strconv.Atoi(yearArg)
	month, err2 := strconv.Atoi(monthArg)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		fmt.Println("usage: /calendar <year> <month>")
		return
	}

	days, err := env.API.MoodByMonth(ctx, year, month)
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	if len(days) == 0 {
		fmt.Printf("No entries in %04d-%02d\n", year, month)
		return
	}
	for _, d := range days {
		fmt.Printf("%s  %s  %s\n", d.Date, mood.ColorFor(d.Emotion), d.Emotion)
	}
}

func profile(ctx context.Context, env *runtimeEnv, args []string) {
	var req api.UpdateMeRequest
	for _, arg := range args {
		if strings.Contains(arg, "@") {
			req.Email = arg
		} else if _, err := time.Parse("2006-01-02", arg); err == nil {
			req.BirthDate = arg
		} else {
			fmt.Println("usage: /profile [email] [YYYY-MM-DD]")
			return
		}
	}
	if req.Email == "" && req.BirthDate == "" {
		whoami(env)
		return
	}

	user, err := env.API.UpdateMe(ctx, req)
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	env.Session.UpdateProfile(session.ProfileUpdate{
		Email:     &user.Email,
		BirthDate: &user.BirthDate,
		Age:       user.Age,
	})
	fmt.Println("✅ Profile updated")
}

func changePassword(ctx context.Context, env *runtimeEnv, current, next string) {
	st := env.Session.Snapshot()
	if !st.IsAuthenticated || st.User == nil {
		fmt.Println("/login first")
		return
	}

	ok, err := env.API.VerifyPassword(ctx, st.User.Username, current)
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	if !ok {
		fmt.Println("❌ Current password does not match")
		return
	}
	if err := env.API.ChangePassword(ctx, current, next, next); err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	fmt.Println("✅ Password changed")
}

func inquiry(ctx context.Context, env *runtimeEnv, rest string) {
	if rest == "" {
		list, err := env.API.MyInquiries(ctx)
		if err != nil {
			fmt.Println(api.UserMessage(err))
			return
		}
		printInquiries(list)
		return
	}

	title, content, ok := strings.Cut(rest, "|")
	if !ok {
		fmt.Println("usage: /inquiry <title> | <content>")
		return
	}
	if err := env.API.CreateInquiry(ctx, strings.TrimSpace(title), strings.TrimSpace(content)); err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	fmt.Println("✅ Inquiry filed")
}

func adminInquiries(ctx context.Context, env *runtimeEnv) {
	list, err := env.API.AdminInquiries(ctx)
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	printInquiries(list)
}

func printInquiries(list []api.Inquiry) {
	if len(list) == 0 {
		fmt.Println("No inquiries")
		return
	}
	for _, q := range list {
		fmt.Printf("#%d [%s] %s", q.ID, q.Status, q.Title)
		if q.Username != "" {
			fmt.Printf(" (%s)", q.Username)
		}
		fmt.Println()
		if q.Answer != "" {
			fmt.Printf("   answer: %s\n", q.Answer)
		}
	}
}

func review(ctx context.Context, env *runtimeEnv, limit int) {
	if env.Archive == nil {
		fmt.Println("Archive is disabled")
		return
	}
	records, err := env.Archive.Recent(ctx, limit)
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	if len(records) == 0 {
		fmt.Println("No archived entries yet")
		return
	}
	for _, r := range records {
		fmt.Printf("%s  %s  %s\n", r.Date, r.MoodColor, firstLine(r.Text))
	}
}

func search(env *runtimeEnv, query string) {
	if env.Archive == nil {
		fmt.Println("Archive is disabled")
		return
	}
	hits, err := env.Archive.Search(query, 10)
	if err != nil {
		fmt.Println(api.UserMessage(err))
		return
	}
	if len(hits) == 0 {
		fmt.Println("No matches")
		return
	}
	for _, h := range hits {
		fmt.Printf("%s  (%.2f)  %s\n", h.Date, h.Score, firstLine(h.Text))
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if runes := []rune(line); len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return line
}
