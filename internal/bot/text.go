package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meanun/linkshelf/internal/bulkparse"
	"github.com/meanun/linkshelf/internal/linkcheck"
	"github.com/meanun/linkshelf/internal/session"
	"github.com/meanun/linkshelf/internal/store"
	tele "gopkg.in/telebot.v3"
)

func (b *Bot) handleCancel(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	b.sessions.Cancel(c.Sender().ID)
	return b.reply(c, true, "Cancelled.")
}

func (b *Bot) handleDone(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	if b.sessions.Mode(actor.UserID) != session.AwaitingEpisodeBulk {
		return b.reply(c, true, "Nothing to finish.")
	}

	s, err := b.sessions.Finish(actor.UserID)
	if err != nil {
		return b.reply(c, true, "Nothing to finish.")
	}
	if len(s.Buffer) == 0 {
		return b.reply(c, true, "No bulk data received.")
	}

	res := bulkparse.Parse(s.Buffer)
	if len(res.Valid) == 0 {
		return b.reply(c, true, fmt.Sprintf(
			"Bulk add complete. Added 0, skipped %d.\n%s",
			len(res.Errors), formatLineErrors(res.Errors)))
	}

	pairs := make([][2]string, len(res.Valid))
	for i, p := range res.Valid {
		pairs[i] = [2]string{normalizeEpisodeName(p.Name), p.Link}
	}
	if _, err := store.AddEpisodeBatch(b.db, s.TitleID, pairs, actor.UserID); err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return b.reply(c, true, "Title not found. Start again from /admin.")
		}
		return err
	}
	b.audit(actor.UserID, "bulk_add_episodes",
		fmt.Sprintf("title_id=%d, added=%d, skipped=%d", s.TitleID, len(res.Valid), len(res.Errors)))

	summary := fmt.Sprintf("Bulk add complete. Added %d, skipped %d.", len(res.Valid), len(res.Errors))
	if len(res.Errors) > 0 {
		summary += "\n" + formatLineErrors(res.Errors)
	}
	return b.reply(c, true, summary, markup(
		[]tele.InlineButton{btnData("List episodes", fmt.Sprintf("admin:eps:%d:0", s.TitleID))},
		backRow("admin:manage"),
	))
}

// formatLineErrors renders per-line parse failures, capped so the
// summary stays a single message.
func formatLineErrors(errs []bulkparse.LineError) string {
	const maxShown = 10
	lines := make([]string, 0, maxShown+1)
	for i, e := range errs {
		if i == maxShown {
			lines = append(lines, fmt.Sprintf("... and %d more", len(errs)-maxShown))
			break
		}
		lines = append(lines, fmt.Sprintf("line %d: %s (%s)", e.Line, e.Raw, e.Reason))
	}
	return strings.Join(lines, "\n")
}

// handleText feeds plain messages into the sender's active input flow.
// Text from non-admins or idle admins is ignored.
func (b *Bot) handleText(c tele.Context) error {
	actor, err := b.actor(c)
	if err != nil {
		return nil
	}
	if !actor.IsAdmin() {
		return nil
	}
	mode := b.sessions.Mode(actor.UserID)
	if mode == session.Idle {
		return nil
	}

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return b.reply(c, true, "Please send text.")
	}

	switch mode {
	case session.AwaitingTitleName:
		return b.textAddTitle(c, actor.UserID, text)
	case session.AwaitingEpisodeName:
		if err := b.sessions.SetPendingName(actor.UserID, normalizeEpisodeName(text)); err != nil {
			return b.reply(c, true, "Missing state. Start again from /admin.")
		}
		return b.reply(c, true, "Send episode link (http/https):")
	case session.AwaitingEpisodeLink:
		return b.textAddEpisodeLink(c, actor.UserID, text)
	case session.AwaitingEpisodeBulk:
		if err := b.sessions.Append(actor.UserID, text); err != nil {
			return b.reply(c, true, "Missing state. Start again from /admin.")
		}
		return b.reply(c, true, "Added to bulk input. Send more or /done to finish.")
	case session.AwaitingTitleRename:
		return b.textRenameTitle(c, actor.UserID, text)
	case session.AwaitingEpisodeRename:
		return b.textRenameEpisode(c, actor.UserID, text)
	case session.AwaitingEpisodeRelink:
		return b.textRelinkEpisode(c, actor.UserID, text)
	}
	return nil
}

func (b *Bot) textAddTitle(c tele.Context, adminID int64, name string) error {
	existing, err := store.GetTitleByName(b.db, name)
	if err != nil && !errors.Is(err, store.ErrTitleNotFound) {
		return err
	}
	if existing != nil {
		b.sessions.Cancel(adminID)
		return b.reply(c, true, "Title already exists. Use existing title?", markup(
			[]tele.InlineButton{btnData("Use existing", fmt.Sprintf("admin:title:%d", existing.ID))},
			[]tele.InlineButton{btnData("Cancel", "admin:manage")},
		))
	}

	title, err := store.CreateTitle(b.db, name, adminID)
	b.sessions.Cancel(adminID)
	if err != nil {
		if errors.Is(err, store.ErrTitleExists) {
			return b.reply(c, true, "Title already exists.")
		}
		return err
	}
	b.audit(adminID, "add_title", fmt.Sprintf("title_id=%d, name=%s", title.ID, title.Name))
	return b.reply(c, true, fmt.Sprintf("%s - Choose an action:", title.Name), titleActionMenu(title.ID))
}

func (b *Bot) textAddEpisodeLink(c tele.Context, adminID int64, raw string) error {
	url := linkcheck.Normalize(raw)
	if !linkcheck.ValidURL(url) {
		// Stay in the link step so the admin can retry.
		return b.reply(c, true, "Invalid URL. Please send the link again (http/https):")
	}

	s, ok := b.sessions.Get(adminID)
	if !ok || s.PendingName == "" {
		b.sessions.Cancel(adminID)
		return b.reply(c, true, "Missing state. Start again from /admin.")
	}
	if _, err := store.AddEpisode(b.db, s.TitleID, s.PendingName, url, adminID); err != nil {
		b.sessions.Cancel(adminID)
		if errors.Is(err, store.ErrTitleNotFound) {
			return b.reply(c, true, "Title not found. Start again from /admin.")
		}
		return err
	}
	b.audit(adminID, "add_episode", fmt.Sprintf("title_id=%d, episode_name=%s", s.TitleID, s.PendingName))

	// Loop back to the name step so episodes chain without re-opening
	// the menu.
	b.sessions.Cancel(adminID)
	if err := b.sessions.StartAddEpisode(adminID, s.TitleID); err != nil {
		return err
	}
	return b.reply(c, true, "Episode added. Send next episode name or /cancel.")
}

func (b *Bot) textRenameTitle(c tele.Context, adminID int64, name string) error {
	s, err := b.sessions.Finish(adminID)
	if err != nil {
		return b.reply(c, true, "Missing state. Start again from /admin.")
	}
	if err := store.RenameTitle(b.db, s.TitleID, name); err != nil {
		switch {
		case errors.Is(err, store.ErrTitleNotFound):
			return b.reply(c, true, "Title not found.")
		case errors.Is(err, store.ErrTitleExists):
			return b.reply(c, true, "Another title already has that name.")
		}
		return err
	}
	b.audit(adminID, "rename_title", fmt.Sprintf("title_id=%d, new_name=%s", s.TitleID, name))
	return b.reply(c, true, "Title updated.", markup(backRow("admin:manage")))
}

func (b *Bot) textRenameEpisode(c tele.Context, adminID int64, name string) error {
	s, err := b.sessions.Finish(adminID)
	if err != nil {
		return b.reply(c, true, "Missing state. Start again from /admin.")
	}
	ep, err := store.GetEpisode(b.db, s.EpisodeID)
	if err != nil {
		if errors.Is(err, store.ErrEpisodeNotFound) {
			return b.reply(c, true, "Episode not found.")
		}
		return err
	}
	newName := normalizeEpisodeName(name)
	if err := store.UpdateEpisode(b.db, s.EpisodeID, newName, ep.URL); err != nil {
		if errors.Is(err, store.ErrEpisodeNotFound) {
			return b.reply(c, true, "Episode not found.")
		}
		return err
	}
	b.audit(adminID, "rename_episode", fmt.Sprintf("episode_id=%d, new_name=%s", s.EpisodeID, newName))
	return b.reply(c, true, "Episode name updated.",
		markup(backRow(fmt.Sprintf("admin:ep:%d", s.EpisodeID))))
}

func (b *Bot) textRelinkEpisode(c tele.Context, adminID int64, raw string) error {
	url := linkcheck.Normalize(raw)
	if !linkcheck.ValidURL(url) {
		return b.reply(c, true, "Invalid URL. Please send the link again (http/https):")
	}

	s, err := b.sessions.Finish(adminID)
	if err != nil {
		return b.reply(c, true, "Missing state. Start again from /admin.")
	}
	ep, err := store.GetEpisode(b.db, s.EpisodeID)
	if err != nil {
		if errors.Is(err, store.ErrEpisodeNotFound) {
			return b.reply(c, true, "Episode not found.")
		}
		return err
	}
	if err := store.UpdateEpisode(b.db, s.EpisodeID, ep.Name, url); err != nil {
		if errors.Is(err, store.ErrEpisodeNotFound) {
			return b.reply(c, true, "Episode not found.")
		}
		return err
	}
	b.audit(adminID, "relink_episode", fmt.Sprintf("episode_id=%d", s.EpisodeID))
	return b.reply(c, true, "Episode link updated.",
		markup(backRow(fmt.Sprintf("admin:ep:%d", s.EpisodeID))))
}
