package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meanun/linkshelf/internal/models"
	"github.com/meanun/linkshelf/internal/pagination"
	"github.com/meanun/linkshelf/internal/store"
	tele "gopkg.in/telebot.v3"
)

func (b *Bot) handleStart(c tele.Context) error {
	if c.Sender() != nil {
		b.sessions.Cancel(c.Sender().ID)
	}
	text := "📚 𝗪𝗲𝗹𝗰𝗼𝗺𝗲 𝘁𝗼 𝗟𝗶𝗻𝗸𝘀𝗵𝗲𝗹𝗳\n" +
		divider + "\n" +
		"Store titles, episodes, and links in one place.\n\n" +
		"🚀 Quick Start\n" +
		"• /link - browse titles and open links\n" +
		"• /list - view all titles\n" +
		"• /search <keyword> - find a title fast\n" +
		"• /updated [n] - see recent updates\n" +
		"• /lastupdate <title> - latest update time\n\n" +
		"🧰 Useful Tools\n" +
		"• /listep 1-10 - generate episode labels\n" +
		"• /getuserid - get your ID or replied user's ID\n" +
		"\n" +
		"🔐 Admin: /admin\n" +
		"💖 Support: /donate"
	return b.reply(c, false, text)
}

func (b *Bot) handleHelp(c tele.Context) error {
	if c.Sender() != nil {
		b.sessions.Cancel(c.Sender().ID)
	}
	text := "📖 𝗛𝗲𝗹𝗽 𝗠𝗲𝗻𝘂\n" +
		divider + "\n" +
		"👤 User Commands\n" +
		"• /start - welcome message\n" +
		"• /link - browse titles\n" +
		"• /list - list all titles\n" +
		"• /search <keyword> - search by title name\n" +
		"• /updated [n] - updates over the last n days\n" +
		"• /lastupdate <title> - latest update of one title\n" +
		"• /listep 1-10 - generate episode labels\n" +
		"• /getuserid - get user ID\n" +
		"\n" +
		"🛠️ Admin Commands\n" +
		"• /admin - admin panel\n" +
		"• /searchbyadmin <keyword> - search manageable titles\n" +
		"• /duplinks - find links shared between episodes\n" +
		"• /checktitlelinks <title> - check links for one title\n" +
		"• /toptitles [n] - top titles by open count\n" +
		"• /badlinks [n|all] - check non-working links\n" +
		"• /topusers [YYYY-MM] - top users by command usage per month\n" +
		"• /auditlog [n] - show recent admin activity\n" +
		"• /addadmin <user_id> - add admin (main admins only)\n" +
		"• /removeadmin <user_id> - remove admin (main admins only)\n" +
		"• /listadmin - list admins (main admins only)\n" +
		"• /cancel - cancel current admin input\n" +
		"• /done - finish bulk add input\n\n" +
		"📌 Admin Rules\n" +
		"• Main admins can manage all data\n" +
		"• Added admins manage only titles they created\n" +
		"• Added admins cannot add/remove other admins\n\n" +
		"💖 Support\n" +
		"• /donate - donation QR"
	return b.reply(c, false, text)
}

func (b *Bot) handleLink(c tele.Context) error {
	if c.Sender() != nil {
		b.sessions.Cancel(c.Sender().ID)
	}
	titles, err := store.ListTitles(b.db)
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		return b.reply(c, false, "No titles yet.")
	}
	pageTitles, page, pageCount := pagination.Page(titles, 0, b.cfg.TitlePageSize)
	return b.reply(c, false, labelTitles, titleListMenu(pageTitles, page, pageCount, "user"))
}

func (b *Bot) handleList(c tele.Context) error {
	titles, err := store.ListTitles(b.db)
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		return b.reply(c, false, "No titles yet.")
	}
	lines := []string{"📚 Title List", divider}
	for i, t := range titles {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Name))
	}
	return b.sendLong(c, false, strings.Join(lines, "\n"))
}

func (b *Bot) handleSearch(c tele.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args(), " "))
	if query == "" {
		return b.reply(c, false, "Usage: /search <keyword>")
	}
	matched, err := store.SearchTitles(b.db, query)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return b.reply(c, false, fmt.Sprintf("No title found for: %s", query))
	}

	shown := matched
	text := fmt.Sprintf("Search results for '%s' (%d found):", query, len(matched))
	if len(matched) > b.cfg.TitlePageSize {
		shown = matched[:b.cfg.TitlePageSize]
		text += fmt.Sprintf("\nShowing first %d. Refine your keyword for fewer results.", b.cfg.TitlePageSize)
	}
	var rows [][]tele.InlineButton
	for _, t := range shown {
		rows = append(rows, []tele.InlineButton{
			btnData(t.Name, fmt.Sprintf("user:title:%d", t.ID)),
		})
	}
	return b.reply(c, false, text, markup(rows...))
}

func (b *Bot) handleUpdated(c tele.Context) error {
	daysBack := 0
	if args := c.Args(); len(args) > 0 {
		if len(args) > 1 {
			return b.reply(c, false, "Usage: /updated [n]\nExample: /updated 1")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return b.reply(c, false, "n must be a number. Example: /updated 2")
		}
		if n < 0 {
			return b.reply(c, false, "n must be 0 or higher.")
		}
		daysBack = n
	}

	nowLocal := time.Now().UTC().Add(b.localOffset())
	today := nowLocal.Truncate(24 * time.Hour)
	startLocal := today.AddDate(0, 0, -daysBack)
	startUTC := startLocal.Add(-b.localOffset())

	rows, err := store.UpdateCountsSince(b.db, startUTC)
	if err != nil {
		return err
	}

	var header string
	if daysBack == 0 {
		header = "📊 𝗧𝗶𝘁𝗹𝗲 𝗨𝗽𝗱𝗮𝘁𝗲 𝗥𝗲𝗽𝗼𝗿𝘁\n" + divider + "\n" +
			fmt.Sprintf("🗓️ Date: %s\n📆 Today", today.Format("2006-01-02"))
	} else {
		header = "📊 𝗧𝗶𝘁𝗹𝗲 𝗨𝗽𝗱𝗮𝘁𝗲 𝗥𝗲𝗽𝗼𝗿𝘁\n" + divider + "\n" +
			fmt.Sprintf("🗓️ Range: %s to %s\n📆 %d day(s)",
				startLocal.Format("2006-01-02"), today.Format("2006-01-02"), daysBack+1)
	}

	if len(rows) == 0 {
		return b.reply(c, false, header+
			"\n📚 Titles updated: 0\n🔗 Links updated: 0\n"+divider+"\nNo updates in this period.")
	}

	var totalAdded int64
	for _, r := range rows {
		totalAdded += r.Added
	}
	lines := []string{
		header,
		fmt.Sprintf("📚 Titles updated: %d", len(rows)),
		fmt.Sprintf("🔗 Links updated: %d", totalAdded),
		divider,
	}
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r.TitleName))
		lines = append(lines, fmt.Sprintf("   🔗 Added %d Links", r.Added))
	}
	return b.sendLong(c, false, strings.Join(lines, "\n"))
}

func (b *Bot) handleLastUpdate(c tele.Context) error {
	raw := strings.TrimSpace(strings.Join(c.Args(), " "))
	if raw == "" {
		return b.reply(c, false, "Usage: /lastupdate <title>")
	}
	title, multi, err := b.pickTitle(raw)
	if err != nil {
		return err
	}
	if multi != "" {
		return b.reply(c, false, multi)
	}
	if title == nil {
		return b.reply(c, false, fmt.Sprintf("Title not found: %s", raw))
	}

	stat, err := store.LastUpdateForTitle(b.db, title.ID)
	if err != nil {
		return err
	}
	if stat.TotalLinks == 0 {
		return b.reply(c, false, "🕒 𝗟𝗮𝘀𝘁 𝗨𝗽𝗱𝗮𝘁𝗲\n"+divider+"\n"+
			fmt.Sprintf("📚 Title: %s\n🕐 Last update: No links yet\n🔗 Total links: 0", title.Name))
	}

	lastLocal := stat.LastUpdate.UTC().Add(b.localOffset())
	nowLocal := time.Now().UTC().Add(b.localOffset())
	daysAgo := int(nowLocal.Truncate(24*time.Hour).Sub(lastLocal.Truncate(24*time.Hour)).Hours() / 24)
	return b.reply(c, false, "🕒 𝗟𝗮𝘀𝘁 𝗨𝗽𝗱𝗮𝘁𝗲\n"+divider+"\n"+
		fmt.Sprintf("📚 Title: %s\n🕐 Last update: %s\n📆 Count day ago: %d day(s)\n🔗 Total links: %d",
			stat.TitleName, lastLocal.Format("2006-01-02 15:04:05"), daysAgo, stat.TotalLinks))
}

func (b *Bot) handleListEp(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return b.reply(c, false, "Usage: /listep 1-10")
	}
	raw := strings.Join(args, " ")
	var startS, endS string
	if strings.Contains(raw, "-") {
		parts := strings.SplitN(raw, "-", 2)
		startS, endS = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	} else {
		if len(args) < 2 {
			return b.reply(c, false, "Usage: /listep 1-10")
		}
		startS, endS = args[0], args[1]
	}
	start, err1 := strconv.Atoi(startS)
	end, err2 := strconv.Atoi(endS)
	if err1 != nil || err2 != nil || start <= 0 || end <= 0 || end < start {
		return b.reply(c, false, "Usage: /listep 1-10")
	}
	return b.sendLong(c, false, episodeLabels(start, end))
}

func (b *Bot) handleGetUserID(c tele.Context) error {
	target := c.Sender()
	if msg := c.Message(); msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		target = msg.ReplyTo.Sender
	}
	if target == nil {
		return b.reply(c, false, "User not found.")
	}
	return b.reply(c, false, fmt.Sprintf("User ID: %d", target.ID))
}

func (b *Bot) handleDonate(c tele.Context) error {
	photo := &tele.Photo{
		File:    tele.FromDisk(b.cfg.DonateImage),
		Caption: "Donate via QR code",
	}
	msg, err := b.tg.Send(c.Chat(), photo)
	if err != nil {
		return b.reply(c, false, fmt.Sprintf("Donation QR image not found: %s", b.cfg.DonateImage))
	}
	b.autoDelete(msg)
	return nil
}

// localOffset is the display timezone offset for date reports.
func (b *Bot) localOffset() time.Duration {
	return b.cfg.UTCOffset()
}

// pickTitle resolves a keyword to exactly one title: an exact
// case-insensitive match wins, a single fuzzy match is accepted, and an
// ambiguous keyword returns a disambiguation message instead.
func (b *Bot) pickTitle(keyword string) (title *models.Title, multi string, err error) {
	matches, err := store.SearchTitles(b.db, keyword)
	if err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", nil
	}
	for i := range matches {
		if strings.EqualFold(matches[i].Name, keyword) {
			return &matches[i], "", nil
		}
	}
	if len(matches) == 1 {
		return &matches[0], "", nil
	}

	names := make([]string, 0, 10)
	for i, t := range matches {
		if i == 10 {
			names = append(names, "...")
			break
		}
		names = append(names, "- "+t.Name)
	}
	return nil, fmt.Sprintf("Multiple titles matched '%s'. Please use full title:\n%s",
		keyword, strings.Join(names, "\n")), nil
}
