package bot

import (
	"fmt"

	"github.com/meanun/linkshelf/internal/models"
	"github.com/meanun/linkshelf/internal/pagination"
	tele "gopkg.in/telebot.v3"
)

// Callback data is routed on raw "user:" / "admin:" prefixes, so menus
// build InlineButtons directly instead of going through unique handlers.

func btnData(text, data string) tele.InlineButton {
	return tele.InlineButton{Text: text, Data: data}
}

func btnURL(text, url string) tele.InlineButton {
	return tele.InlineButton{Text: text, URL: url}
}

func markup(rows ...[]tele.InlineButton) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func backRow(data string) []tele.InlineButton {
	return []tele.InlineButton{btnData("Back", data)}
}

// titleListMenu renders one page of title buttons, one per row, with
// Prev/Next navigation. scope is "user" or "admin" and decides where
// the buttons route.
func titleListMenu(titles []models.Title, page, pages int, scope string) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	for _, t := range titles {
		rows = append(rows, []tele.InlineButton{
			btnData(t.Name, fmt.Sprintf("%s:title:%d", scope, t.ID)),
		})
	}
	var nav []tele.InlineButton
	if pagination.HasPrev(page) {
		nav = append(nav, btnData("Prev", fmt.Sprintf("%s:titles:%d", scope, page-1)))
	}
	if pagination.HasNext(page, pages) {
		nav = append(nav, btnData("Next", fmt.Sprintf("%s:titles:%d", scope, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	if scope == "admin" {
		rows = append(rows, backRow("admin:back"))
	}
	return markup(rows...)
}

// userEpisodeMenu renders one page of episode link buttons, three per
// row, each opening the episode URL directly.
func userEpisodeMenu(titleID uint, eps []models.Episode, page, pages int) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	var row []tele.InlineButton
	for _, ep := range eps {
		row = append(row, btnURL(displayEpisodeName(ep.Name), ep.URL))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	var nav []tele.InlineButton
	if pagination.HasPrev(page) {
		nav = append(nav, btnData("Prev", fmt.Sprintf("user:eps:%d:%d", titleID, page-1)))
	}
	if pagination.HasNext(page, pages) {
		nav = append(nav, btnData("Next", fmt.Sprintf("user:eps:%d:%d", titleID, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, backRow("user:back"))
	return markup(rows...)
}

// adminEpisodeMenu is the management counterpart: buttons open the
// episode action menu instead of the link.
func adminEpisodeMenu(titleID uint, eps []models.Episode, page, pages int) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	var row []tele.InlineButton
	for _, ep := range eps {
		row = append(row, btnData(displayEpisodeName(ep.Name), fmt.Sprintf("admin:ep:%d", ep.ID)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	var nav []tele.InlineButton
	if pagination.HasPrev(page) {
		nav = append(nav, btnData("Prev", fmt.Sprintf("admin:eps:%d:%d", titleID, page-1)))
	}
	if pagination.HasNext(page, pages) {
		nav = append(nav, btnData("Next", fmt.Sprintf("admin:eps:%d:%d", titleID, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, backRow(fmt.Sprintf("admin:title:%d", titleID)))
	return markup(rows...)
}

// adminPanelMenu is the /admin entry menu.
func adminPanelMenu() *tele.ReplyMarkup {
	return markup(
		[]tele.InlineButton{btnData("Add title", "admin:add_title")},
		[]tele.InlineButton{btnData("Manage titles", "admin:manage")},
	)
}

// titleActionMenu lists management actions for one title.
func titleActionMenu(id uint) *tele.ReplyMarkup {
	return markup(
		[]tele.InlineButton{btnData("Add episode", fmt.Sprintf("admin:addep:%d", id))},
		[]tele.InlineButton{btnData("Bulk add episodes", fmt.Sprintf("admin:bulk_add:%d", id))},
		[]tele.InlineButton{btnData("List episodes", fmt.Sprintf("admin:eps:%d:0", id))},
		[]tele.InlineButton{btnData("Copy all episodes", fmt.Sprintf("admin:copy_eps:%d", id))},
		[]tele.InlineButton{btnData("Rename title", fmt.Sprintf("admin:edit_title:%d", id))},
		[]tele.InlineButton{btnData("Delete title", fmt.Sprintf("admin:del_title:%d", id))},
		backRow("admin:manage"),
	)
}

// episodeActionMenu lists management actions for one episode, with
// Prev/Next navigation when siblings exist.
func episodeActionMenu(ep *models.Episode, prevID, nextID uint) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	var nav []tele.InlineButton
	if prevID != 0 {
		nav = append(nav, btnData("Prev", fmt.Sprintf("admin:ep:%d", prevID)))
	}
	if nextID != 0 {
		nav = append(nav, btnData("Next", fmt.Sprintf("admin:ep:%d", nextID)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows,
		[]tele.InlineButton{btnData("Rename episode", fmt.Sprintf("admin:edit_ep_name:%d", ep.ID))},
		[]tele.InlineButton{btnData("Replace link", fmt.Sprintf("admin:edit_ep_url:%d", ep.ID))},
		[]tele.InlineButton{btnData("Delete episode", fmt.Sprintf("admin:del_ep:%d", ep.ID))},
		backRow(fmt.Sprintf("admin:eps:%d:0", ep.TitleID)),
	)
	return markup(rows...)
}

// confirmMenu renders a Yes/Cancel pair for destructive actions.
func confirmMenu(confirmData, cancelData string) *tele.ReplyMarkup {
	return markup(
		[]tele.InlineButton{btnData("Yes, delete", confirmData)},
		[]tele.InlineButton{btnData("Cancel", cancelData)},
	)
}
