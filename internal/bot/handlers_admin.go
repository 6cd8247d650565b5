package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/meanun/linkshelf/internal/authz"
	"github.com/meanun/linkshelf/internal/models"
	"github.com/meanun/linkshelf/internal/store"
	tele "gopkg.in/telebot.v3"
)

// audit appends an admin action to the audit trail. Failures are logged
// but never block the action itself.
func (b *Bot) audit(actorID int64, action, details string) {
	if err := store.AppendAudit(b.db, actorID, action, details); err != nil {
		log.Printf("bot: append audit %q: %v", action, err)
	}
}

// canManage reports whether the actor may update or delete the title.
func canManage(actor authz.Actor, title *models.Title) bool {
	return authz.Authorize(actor, authz.ActionUpdate, &authz.Record{CreatedBy: title.CreatedBy}) == nil
}

func (b *Bot) handleAdmin(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}
	titleCount, err := store.CountTitles(b.db)
	if err != nil {
		return err
	}
	epCount, err := store.CountEpisodes(b.db)
	if err != nil {
		return err
	}
	return b.reply(c, true,
		fmt.Sprintf("Admin panel\nTitles: %d | Episodes: %d", titleCount, epCount),
		adminPanelMenu())
}

func (b *Bot) handleSearchByAdmin(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}
	query := strings.TrimSpace(strings.Join(c.Args(), " "))
	if query == "" {
		return b.reply(c, true, "Usage: /searchbyadmin <keyword>")
	}
	matches, err := store.SearchTitles(b.db, query)
	if err != nil {
		return err
	}
	var manageable []models.Title
	for _, t := range matches {
		if canManage(actor, &t) {
			manageable = append(manageable, t)
		}
	}
	if len(manageable) == 0 {
		return b.reply(c, true, fmt.Sprintf("No manageable title found for: %s", query))
	}

	shown := manageable
	text := fmt.Sprintf("Manageable results for '%s' (%d found):", query, len(manageable))
	if len(manageable) > b.cfg.TitlePageSize {
		shown = manageable[:b.cfg.TitlePageSize]
		text += fmt.Sprintf("\nShowing first %d. Refine your keyword for fewer results.", b.cfg.TitlePageSize)
	}
	var rows [][]tele.InlineButton
	for _, t := range shown {
		rows = append(rows, []tele.InlineButton{
			btnData(t.Name, fmt.Sprintf("admin:title:%d", t.ID)),
		})
	}
	rows = append(rows, backRow("admin:back"))
	return b.reply(c, true, text, markup(rows...))
}

func (b *Bot) handleAddAdmin(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if err := authz.Authorize(actor, authz.ActionManageAdmins, nil); err != nil {
		return b.reply(c, true, "Only main admins can add admins.")
	}
	args := c.Args()
	if len(args) == 0 {
		return b.reply(c, true, "Usage: /addadmin <user_id>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.reply(c, true, "User ID must be a number.")
	}
	if b.cfg.IsMainAdmin(userID) {
		return b.reply(c, true, "That user is already a main admin.")
	}
	if err := store.AddAdmin(b.db, userID); err != nil {
		if errors.Is(err, store.ErrAdminExists) {
			return b.reply(c, true, "Admin already exists.")
		}
		return err
	}
	b.audit(actor.UserID, "add_admin", fmt.Sprintf("user_id=%d", userID))
	return b.reply(c, true, fmt.Sprintf("Admin added: %d", userID))
}

func (b *Bot) handleRemoveAdmin(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if err := authz.Authorize(actor, authz.ActionManageAdmins, nil); err != nil {
		return b.reply(c, true, "Only main admins can remove admins.")
	}
	args := c.Args()
	if len(args) == 0 {
		return b.reply(c, true, "Usage: /removeadmin <user_id>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.reply(c, true, "User ID must be a number.")
	}
	if b.cfg.IsMainAdmin(userID) {
		return b.reply(c, true, "Main admins come from config and cannot be removed here.")
	}
	if err := store.RemoveAdmin(b.db, userID); err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			return b.reply(c, true, "Admin not found.")
		}
		return err
	}
	b.audit(actor.UserID, "remove_admin", fmt.Sprintf("user_id=%d", userID))
	return b.reply(c, true, fmt.Sprintf("Admin removed: %d", userID))
}

func (b *Bot) handleListAdmin(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if err := authz.Authorize(actor, authz.ActionManageAdmins, nil); err != nil {
		return b.reply(c, true, "Only main admins can list admins.")
	}
	added, err := store.ListAdmins(b.db)
	if err != nil {
		return err
	}
	lines := []string{"Main admins:"}
	for _, id := range b.cfg.MainAdmins {
		lines = append(lines, fmt.Sprintf("%s - %d", b.chatName(id), id))
	}
	lines = append(lines, "", "Added admins:")
	for _, id := range added {
		lines = append(lines, fmt.Sprintf("%s - %d", b.chatName(id), id))
	}
	return b.reply(c, true, strings.TrimSpace(strings.Join(lines, "\n")))
}

func (b *Bot) handleAuditLog(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}
	limit := auditDefaultLimit
	if args := c.Args(); len(args) > 0 {
		if len(args) > 1 {
			return b.reply(c, true, "Usage: /auditlog [n]")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return b.reply(c, true, "n must be a number.")
		}
		if n <= 0 {
			return b.reply(c, true, "n must be greater than 0.")
		}
		limit = n
	}
	if limit > auditMaxLimit {
		limit = auditMaxLimit
	}

	logs, err := store.RecentAudit(b.db, limit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return b.reply(c, true, "No audit logs yet.")
	}
	lines := []string{"🧾 Audit Log", divider, fmt.Sprintf("Showing latest %d item(s)", len(logs)), ""}
	for _, item := range logs {
		lines = append(lines, fmt.Sprintf("[%s] %s by %d",
			item.CreatedAt.Format("2006-01-02 15:04:05"), item.Action, item.ActorID))
		lines = append(lines, "  "+item.Details)
	}
	return b.sendLong(c, true, strings.Join(lines, "\n"))
}

func (b *Bot) handleBadLinks(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}

	limit := deadlinkDefaultLimit
	scope := "recent"
	if args := c.Args(); len(args) > 0 {
		if len(args) > 1 {
			return b.reply(c, true, "Usage: /badlinks [n|all]")
		}
		arg := strings.ToLower(strings.TrimSpace(args[0]))
		if arg == "all" {
			total, err := store.CountEpisodes(b.db)
			if err != nil {
				return err
			}
			limit = int(total)
			scope = "all"
		} else {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return b.reply(c, true, "n must be a number or 'all'.")
			}
			if n <= 0 {
				return b.reply(c, true, "n must be greater than 0.")
			}
			limit = n
		}
	}
	if limit > deadlinkMaxLimit {
		limit = deadlinkMaxLimit
	}

	rows, err := store.RecentLinks(b.db, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return b.reply(c, true, "No episodes found.")
	}

	links := make([]string, len(rows))
	for i, r := range rows {
		links[i] = r.URL
	}
	results := b.prober.CheckAll(context.Background(), links, probeWorkers)

	type badLink struct {
		row    store.EpisodeLink
		detail string
	}
	var bad []badLink
	for i, res := range results {
		if !res.OK {
			bad = append(bad, badLink{row: rows[i], detail: res.Detail})
		}
	}

	header := []string{
		"🔗 Dead Link Check",
		divider,
		fmt.Sprintf("Checked: %d %s link(s)", len(rows), scope),
		fmt.Sprintf("Broken/timeout: %d", len(bad)),
		"",
	}
	if len(bad) == 0 {
		return b.reply(c, true, strings.TrimSpace(strings.Join(header, "\n"))+"\nNo dead links found.")
	}
	lines := header
	for i, bl := range bad {
		lines = append(lines, fmt.Sprintf("%d. %s | %s", i+1, bl.row.TitleName, displayEpisodeName(bl.row.EpisodeName)))
		lines = append(lines, "   Reason: "+bl.detail)
		lines = append(lines, "   URL: "+bl.row.URL)
	}
	return b.sendLong(c, true, strings.Join(lines, "\n"))
}

func (b *Bot) handleCheckTitleLinks(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}
	raw := strings.TrimSpace(strings.Join(c.Args(), " "))
	if raw == "" {
		return b.reply(c, true, "Usage: /checktitlelinks <title>")
	}
	title, multi, err := b.pickTitle(raw)
	if err != nil {
		return err
	}
	if multi != "" {
		return b.reply(c, true, multi)
	}
	if title == nil {
		return b.reply(c, true, fmt.Sprintf("Title not found: %s", raw))
	}
	if !canManage(actor, title) {
		return b.reply(c, true, "You cannot check links for this title.")
	}

	eps, err := store.ListEpisodes(b.db, title.ID)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		return b.reply(c, true, fmt.Sprintf("%s - No episodes yet.", title.Name))
	}

	links := make([]string, len(eps))
	for i, ep := range eps {
		links[i] = ep.URL
	}
	results := b.prober.CheckAll(context.Background(), links, probeWorkers)

	type badEp struct {
		ep     models.Episode
		detail string
	}
	var bad []badEp
	for i, res := range results {
		if !res.OK {
			bad = append(bad, badEp{ep: eps[i], detail: res.Detail})
		}
	}

	header := []string{
		"🔗 Title Link Check",
		divider,
		"Title: " + title.Name,
		fmt.Sprintf("Checked: %d link(s)", len(eps)),
		fmt.Sprintf("Broken/timeout: %d", len(bad)),
		"",
	}
	if len(bad) == 0 {
		return b.reply(c, true, strings.TrimSpace(strings.Join(header, "\n"))+"\nNo dead links found.")
	}
	lines := header
	for i, be := range bad {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, displayEpisodeName(be.ep.Name)))
		lines = append(lines, "   Reason: "+be.detail)
		lines = append(lines, "   URL: "+be.ep.URL)
	}
	return b.sendLong(c, true, strings.Join(lines, "\n"))
}

func (b *Bot) handleDupLinks(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}
	rows, err := store.DuplicateLinks(b.db)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return b.reply(c, true, "No duplicate links found.")
	}

	// Rows arrive grouped by URL; render one block per URL.
	var lines []string
	var groupCount int
	for i := 0; i < len(rows); {
		url := rows[i].URL
		groupCount++
		lines = append(lines, fmt.Sprintf("%d. 🔗 %s", groupCount, url))
		lines = append(lines, fmt.Sprintf("   Used: %d time(s)", rows[i].Uses))
		for ; i < len(rows) && rows[i].URL == url; i++ {
			lines = append(lines, fmt.Sprintf("   - %s | %s", rows[i].TitleName, displayEpisodeName(rows[i].EpisodeName)))
		}
		lines = append(lines, "")
	}
	header := []string{"🔎 Duplicate Link Report", divider, fmt.Sprintf("Duplicate links found: %d", groupCount), ""}
	return b.sendLong(c, true, strings.TrimSpace(strings.Join(append(header, lines...), "\n")))
}

func (b *Bot) handleTopTitles(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}
	limit := topTitlesDefault
	if args := c.Args(); len(args) > 0 {
		if len(args) > 1 {
			return b.reply(c, true, "Usage: /toptitles [n]")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return b.reply(c, true, "n must be a number.")
		}
		if n <= 0 {
			return b.reply(c, true, "n must be greater than 0.")
		}
		limit = n
	}
	if limit > topTitlesMax {
		limit = topTitlesMax
	}

	rows, err := store.TopTitles(b.db, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return b.reply(c, true, "No title view data yet.")
	}
	lines := []string{"📈 Top Titles", divider, fmt.Sprintf("Showing top %d titles by opens", len(rows)), ""}
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d. %s - %d open(s)", i+1, r.TitleName, r.Views))
	}
	return b.sendLong(c, true, strings.Join(lines, "\n"))
}

func (b *Bot) handleTopUsers(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	b.sessions.Cancel(actor.UserID)
	if !actor.IsAdmin() {
		return b.reply(c, true, "You are not an admin.")
	}

	nowLocal := time.Now().UTC().Add(b.localOffset())
	month := nowLocal.Format("2006-01")
	if args := c.Args(); len(args) > 0 {
		if len(args) > 1 {
			return b.reply(c, true, "Usage: /topusers [YYYY-MM]")
		}
		month = strings.TrimSpace(args[0])
	}
	monthStartLocal, err := time.Parse("2006-01", month)
	if err != nil {
		return b.reply(c, true, "Month format must be YYYY-MM.")
	}
	monthStart := monthStartLocal.Add(-b.localOffset())
	monthEnd := monthStartLocal.AddDate(0, 1, 0).Add(-b.localOffset())

	rows, err := store.TopUsersForMonth(b.db, "link", monthStart, monthEnd, topUsersLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return b.reply(c, true, fmt.Sprintf("No /link usage data for %s.", month))
	}
	lines := []string{"📊 Monthly Top Users", divider, "Month: " + month, ""}
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d. %s - %d command(s)", i+1, b.chatName(r.UserID), r.Uses))
	}
	return b.sendLong(c, true, strings.Join(lines, "\n"))
}

// chatName resolves a user id to a display name, falling back to the id
// when the chat is unreachable.
func (b *Bot) chatName(id int64) string {
	chat, err := b.tg.ChatByID(id)
	if err != nil {
		return strconv.FormatInt(id, 10)
	}
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	switch {
	case name != "" && chat.Username != "":
		return fmt.Sprintf("%s (@%s)", name, chat.Username)
	case name != "":
		return name
	case chat.Username != "":
		return "@" + chat.Username
	}
	return strconv.FormatInt(id, 10)
}

// SweepLinks probes the most recent links and logs the dead ones. It is
// wired to a cron schedule so broken links surface without anyone
// running /badlinks.
func (b *Bot) SweepLinks(ctx context.Context) {
	rows, err := store.RecentLinks(b.db, deadlinkDefaultLimit)
	if err != nil {
		log.Printf("bot: link sweep: %v", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	links := make([]string, len(rows))
	for i, r := range rows {
		links[i] = r.URL
	}
	results := b.prober.CheckAll(ctx, links, probeWorkers)
	dead := 0
	for i, res := range results {
		if !res.OK {
			dead++
			log.Printf("bot: link sweep: dead link %q (%s | %s): %s",
				res.Link, rows[i].TitleName, displayEpisodeName(rows[i].EpisodeName), res.Detail)
		}
	}
	log.Printf("bot: link sweep: checked %d link(s), %d dead", len(rows), dead)
}
