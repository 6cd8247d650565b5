package bot

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/meanun/linkshelf/internal/authz"
	"github.com/meanun/linkshelf/internal/models"
	"github.com/meanun/linkshelf/internal/pagination"
	"github.com/meanun/linkshelf/internal/session"
	"github.com/meanun/linkshelf/internal/store"
	tele "gopkg.in/telebot.v3"
)

// handleCallback routes raw callback data. "user:" data is the public
// browse surface, "admin:" data the management surface.
func (b *Bot) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	defer c.Respond()

	data := strings.TrimSpace(cb.Data)
	switch {
	case strings.HasPrefix(data, "user:"):
		return b.userCallback(c, strings.TrimPrefix(data, "user:"))
	case strings.HasPrefix(data, "admin:"):
		return b.adminCallback(c, strings.TrimPrefix(data, "admin:"))
	}
	return nil
}

func parseID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// userTitlesPage edits the message into one page of the title menu.
func (b *Bot) userTitlesPage(c tele.Context, pageIndex int) error {
	titles, err := store.ListTitles(b.db)
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		return c.Edit("No titles yet.")
	}
	pageTitles, page, pages := pagination.Page(titles, pageIndex, b.cfg.TitlePageSize)
	return c.Edit(labelTitles, titleListMenu(pageTitles, page, pages, "user"))
}

// userEpisodesPage edits the message into one page of a title's episode
// link buttons.
func (b *Bot) userEpisodesPage(c tele.Context, titleID uint, pageIndex int) error {
	title, err := store.GetTitle(b.db, titleID)
	if err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return c.Edit("Title not found.")
		}
		return err
	}
	eps, err := store.ListEpisodes(b.db, titleID)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		return c.Edit(fmt.Sprintf("%s - No episodes yet.", title.Name), markup(backRow("user:back")))
	}
	pageEps, page, pages := pagination.Page(eps, pageIndex, b.cfg.EpisodePageSize)
	return c.Edit(fmt.Sprintf("%s %s", title.Name, labelAllEps), userEpisodeMenu(titleID, pageEps, page, pages))
}

func (b *Bot) userCallback(c tele.Context, action string) error {
	switch {
	case strings.HasPrefix(action, "title:"):
		titleID := parseID(strings.TrimPrefix(action, "title:"))
		if c.Sender() != nil {
			// View stats are best effort; browsing still works.
			if err := store.AddView(b.db, titleID, c.Sender().ID); err != nil {
				log.Printf("bot: record view title %d: %v", titleID, err)
			}
		}
		return b.userEpisodesPage(c, titleID, 0)

	case strings.HasPrefix(action, "eps:"):
		parts := strings.Split(action, ":")
		if len(parts) < 3 {
			return nil
		}
		page, _ := strconv.Atoi(parts[2])
		return b.userEpisodesPage(c, parseID(parts[1]), page)

	case strings.HasPrefix(action, "titles:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(action, "titles:"))
		return b.userTitlesPage(c, page)

	case action == "back":
		return b.userTitlesPage(c, 0)
	}
	return nil
}

// adminTitlesPage edits the message into one page of the management
// title menu.
func (b *Bot) adminTitlesPage(c tele.Context, pageIndex int) error {
	titles, err := store.ListTitles(b.db)
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		return c.Edit("No titles yet.")
	}
	pageTitles, page, pages := pagination.Page(titles, pageIndex, b.cfg.TitlePageSize)
	return c.Edit("Select a title:", titleListMenu(pageTitles, page, pages, "admin"))
}

// adminTitleActions edits the message into one title's action menu.
func (b *Bot) adminTitleActions(c tele.Context, titleID uint) error {
	title, err := store.GetTitle(b.db, titleID)
	if err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return c.Edit("Title not found.")
		}
		return err
	}
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	if !canManage(actor, title) {
		return c.Edit("You cannot manage this title.", markup(backRow("admin:manage")))
	}
	return c.Edit(fmt.Sprintf("%s - Choose an action:", title.Name), titleActionMenu(titleID))
}

func (b *Bot) adminCallback(c tele.Context, action string) error {
	actor, err := b.actor(c)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return c.Edit("You are not an admin.")
	}
	b.autoDelete(c.Message())

	switch {
	case action == "add_title":
		if err := b.sessions.StartAddTitle(actor.UserID); err != nil {
			return b.sessionBusy(c, err)
		}
		return c.Edit("Send the title name:")

	case action == "manage":
		b.sessions.Cancel(actor.UserID)
		return b.adminTitlesPage(c, 0)

	case strings.HasPrefix(action, "titles:"):
		b.sessions.Cancel(actor.UserID)
		page, _ := strconv.Atoi(strings.TrimPrefix(action, "titles:"))
		return b.adminTitlesPage(c, page)

	case action == "back":
		b.sessions.Cancel(actor.UserID)
		titleCount, err := store.CountTitles(b.db)
		if err != nil {
			return err
		}
		epCount, err := store.CountEpisodes(b.db)
		if err != nil {
			return err
		}
		return c.Edit(fmt.Sprintf("Admin panel\nTitles: %d | Episodes: %d", titleCount, epCount), adminPanelMenu())

	case strings.HasPrefix(action, "title:"):
		b.sessions.Cancel(actor.UserID)
		return b.adminTitleActions(c, parseID(strings.TrimPrefix(action, "title:")))

	case strings.HasPrefix(action, "addep:"):
		titleID := parseID(strings.TrimPrefix(action, "addep:"))
		title, err := store.GetTitle(b.db, titleID)
		if err != nil {
			if errors.Is(err, store.ErrTitleNotFound) {
				return c.Edit("Title not found.")
			}
			return err
		}
		if !canManage(actor, title) {
			return c.Edit("You cannot add episodes to this title.")
		}
		if err := b.sessions.StartAddEpisode(actor.UserID, titleID); err != nil {
			return b.sessionBusy(c, err)
		}
		return c.Edit(fmt.Sprintf("%s - Send episode name:", title.Name))

	case strings.HasPrefix(action, "bulk_add:"):
		titleID := parseID(strings.TrimPrefix(action, "bulk_add:"))
		title, err := store.GetTitle(b.db, titleID)
		if err != nil {
			if errors.Is(err, store.ErrTitleNotFound) {
				return c.Edit("Title not found.")
			}
			return err
		}
		if !canManage(actor, title) {
			return c.Edit("You cannot add episodes to this title.")
		}
		if err := b.sessions.StartBulkAdd(actor.UserID, titleID); err != nil {
			return b.sessionBusy(c, err)
		}
		return c.Edit(fmt.Sprintf(
			"%s\nSend one episode per line, then /done:\nExample:\n%s១ https://m.facebook.com/...\n%s២ https://m.facebook.com/...",
			title.Name, epPrefix, epPrefix))

	case strings.HasPrefix(action, "eps:"):
		b.sessions.Cancel(actor.UserID)
		parts := strings.Split(action, ":")
		if len(parts) < 3 {
			return nil
		}
		page, _ := strconv.Atoi(parts[2])
		return b.adminEpisodesPage(c, actor, parseID(parts[1]), page)

	case strings.HasPrefix(action, "ep:"):
		b.sessions.Cancel(actor.UserID)
		return b.adminEpisodeActions(c, actor, parseID(strings.TrimPrefix(action, "ep:")))

	case strings.HasPrefix(action, "copy_eps:"):
		return b.adminCopyEpisodes(c, actor, parseID(strings.TrimPrefix(action, "copy_eps:")))

	case strings.HasPrefix(action, "edit_title:"):
		titleID := parseID(strings.TrimPrefix(action, "edit_title:"))
		title, err := store.GetTitle(b.db, titleID)
		if err != nil {
			if errors.Is(err, store.ErrTitleNotFound) {
				return c.Edit("Title not found.")
			}
			return err
		}
		if !canManage(actor, title) {
			return c.Edit("You cannot edit this title.")
		}
		if err := b.sessions.StartRenameTitle(actor.UserID, titleID); err != nil {
			return b.sessionBusy(c, err)
		}
		return c.Edit(fmt.Sprintf("%s - Send the new title name:", title.Name),
			markup([]tele.InlineButton{btnData("Cancel", fmt.Sprintf("admin:title:%d", titleID))}))

	case strings.HasPrefix(action, "edit_ep_name:"):
		epID := parseID(strings.TrimPrefix(action, "edit_ep_name:"))
		ep, err := b.manageableEpisode(c, actor, epID, "edit")
		if err != nil || ep == nil {
			return err
		}
		if err := b.sessions.StartRenameEpisode(actor.UserID, ep.TitleID, epID); err != nil {
			return b.sessionBusy(c, err)
		}
		return c.Edit(fmt.Sprintf("%s\nSend the new episode name:", displayEpisodeName(ep.Name)),
			markup([]tele.InlineButton{btnData("Cancel", fmt.Sprintf("admin:ep:%d", epID))}))

	case strings.HasPrefix(action, "edit_ep_url:"):
		epID := parseID(strings.TrimPrefix(action, "edit_ep_url:"))
		ep, err := b.manageableEpisode(c, actor, epID, "edit")
		if err != nil || ep == nil {
			return err
		}
		if err := b.sessions.StartRelinkEpisode(actor.UserID, ep.TitleID, epID); err != nil {
			return b.sessionBusy(c, err)
		}
		return c.Edit(fmt.Sprintf("%s\nSend the new episode link (http/https):", displayEpisodeName(ep.Name)),
			markup([]tele.InlineButton{btnData("Cancel", fmt.Sprintf("admin:ep:%d", epID))}))

	case strings.HasPrefix(action, "del_title:"):
		b.sessions.Cancel(actor.UserID)
		titleID := parseID(strings.TrimPrefix(action, "del_title:"))
		title, err := store.GetTitle(b.db, titleID)
		if err != nil {
			if errors.Is(err, store.ErrTitleNotFound) {
				return c.Edit("Title not found.")
			}
			return err
		}
		if !canManage(actor, title) {
			return c.Edit("You cannot delete this title.")
		}
		return c.Edit(fmt.Sprintf("Delete title '%s' and all episodes?", title.Name),
			confirmMenu(fmt.Sprintf("admin:confirm_del_title:%d", titleID), fmt.Sprintf("admin:title:%d", titleID)))

	case strings.HasPrefix(action, "confirm_del_title:"):
		titleID := parseID(strings.TrimPrefix(action, "confirm_del_title:"))
		title, err := store.GetTitle(b.db, titleID)
		if err != nil {
			if errors.Is(err, store.ErrTitleNotFound) {
				return c.Edit("Title not found.")
			}
			return err
		}
		if !canManage(actor, title) {
			return c.Edit("You cannot delete this title.")
		}
		if err := store.DeleteTitle(b.db, titleID); err != nil {
			if errors.Is(err, store.ErrTitleNotFound) {
				return c.Edit("Title not found.")
			}
			return err
		}
		b.audit(actor.UserID, "delete_title", fmt.Sprintf("title_id=%d, name=%s", titleID, title.Name))
		return c.Edit("Title deleted.", markup(backRow("admin:manage")))

	case strings.HasPrefix(action, "del_ep:"):
		b.sessions.Cancel(actor.UserID)
		epID := parseID(strings.TrimPrefix(action, "del_ep:"))
		ep, err := b.manageableEpisode(c, actor, epID, "delete")
		if err != nil || ep == nil {
			return err
		}
		return c.Edit(fmt.Sprintf("Delete episode '%s'?", displayEpisodeName(ep.Name)),
			confirmMenu(fmt.Sprintf("admin:confirm_del_ep:%d", epID), fmt.Sprintf("admin:ep:%d", epID)))

	case strings.HasPrefix(action, "confirm_del_ep:"):
		epID := parseID(strings.TrimPrefix(action, "confirm_del_ep:"))
		ep, err := b.manageableEpisode(c, actor, epID, "delete")
		if err != nil || ep == nil {
			return err
		}
		if err := store.DeleteEpisode(b.db, epID); err != nil {
			if errors.Is(err, store.ErrEpisodeNotFound) {
				return c.Edit("Episode not found.")
			}
			return err
		}
		b.audit(actor.UserID, "delete_episode", fmt.Sprintf("episode_id=%d, title_id=%d", epID, ep.TitleID))
		return c.Edit("Episode deleted.",
			markup([]tele.InlineButton{btnData("Back to episodes", fmt.Sprintf("admin:eps:%d:0", ep.TitleID))}))
	}
	return nil
}

// sessionBusy reports an overlapping flow start without disturbing the
// active flow.
func (b *Bot) sessionBusy(c tele.Context, err error) error {
	if errors.Is(err, session.ErrSessionBusy) {
		return c.Respond(&tele.CallbackResponse{
			Text: "Another input flow is active. Finish it or send /cancel.",
		})
	}
	return err
}

// manageableEpisode loads an episode and checks the actor may manage
// its title. A nil episode with nil error means the refusal was already
// rendered.
func (b *Bot) manageableEpisode(c tele.Context, actor authz.Actor, epID uint, verb string) (*models.Episode, error) {
	ep, err := store.GetEpisode(b.db, epID)
	if err != nil {
		if errors.Is(err, store.ErrEpisodeNotFound) {
			return nil, c.Edit("Episode not found.")
		}
		return nil, err
	}
	title, err := store.GetTitle(b.db, ep.TitleID)
	if err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return nil, c.Edit("Title not found.")
		}
		return nil, err
	}
	if !canManage(actor, title) {
		return nil, c.Edit(fmt.Sprintf("You cannot %s this episode.", verb))
	}
	return ep, nil
}

// adminEpisodesPage edits the message into one page of the management
// episode menu.
func (b *Bot) adminEpisodesPage(c tele.Context, actor authz.Actor, titleID uint, pageIndex int) error {
	title, err := store.GetTitle(b.db, titleID)
	if err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return c.Edit("Title not found.")
		}
		return err
	}
	if !canManage(actor, title) {
		return c.Edit("You cannot access episodes from this title.")
	}
	eps, err := store.ListEpisodes(b.db, titleID)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		return c.Edit(fmt.Sprintf("%s - No episodes yet.", title.Name),
			markup(backRow(fmt.Sprintf("admin:title:%d", titleID))))
	}
	pageEps, page, pages := pagination.Page(eps, pageIndex, b.cfg.EpisodePageSize)
	return c.Edit(fmt.Sprintf("%s - Select an episode:", title.Name),
		adminEpisodeMenu(titleID, pageEps, page, pages))
}

// adminEpisodeActions edits the message into one episode's action menu.
func (b *Bot) adminEpisodeActions(c tele.Context, actor authz.Actor, epID uint) error {
	ep, err := b.manageableEpisode(c, actor, epID, "manage")
	if err != nil || ep == nil {
		return err
	}
	prevID, err := store.PrevEpisodeID(b.db, ep.TitleID, epID)
	if err != nil {
		return err
	}
	nextID, err := store.NextEpisodeID(b.db, ep.TitleID, epID)
	if err != nil {
		return err
	}
	return c.Edit(fmt.Sprintf("%s\nChoose an action:", displayEpisodeName(ep.Name)),
		episodeActionMenu(ep, prevID, nextID))
}

// adminCopyEpisodes sends a title's full episode list as text, or as a
// document when it would not fit in one message.
func (b *Bot) adminCopyEpisodes(c tele.Context, actor authz.Actor, titleID uint) error {
	title, err := store.GetTitle(b.db, titleID)
	if err != nil {
		if errors.Is(err, store.ErrTitleNotFound) {
			return c.Edit("Title not found.")
		}
		return err
	}
	if !canManage(actor, title) {
		return c.Edit("You cannot access episodes from this title.")
	}
	eps, err := store.ListEpisodes(b.db, titleID)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		return c.Edit(fmt.Sprintf("%s - No episodes yet.", title.Name),
			markup(backRow(fmt.Sprintf("admin:title:%d", titleID))))
	}

	text := copyAllText(title.Name, eps)
	if len(text) <= maxChunkChars {
		return b.reply(c, true, text)
	}
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader([]byte(text))),
		FileName: fmt.Sprintf("%s_episodes.txt", title.Name),
		Caption:  "All episodes",
	}
	msg, err := b.tg.Send(c.Chat(), doc)
	if err != nil {
		return err
	}
	b.autoDelete(msg)
	return nil
}
