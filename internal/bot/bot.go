// Package bot is the Telegram surface: commands, inline menus,
// callback routing, and the per-admin input flows.
package bot

import (
	"fmt"
	"log"
	"time"

	"github.com/meanun/linkshelf/internal/authz"
	"github.com/meanun/linkshelf/internal/config"
	"github.com/meanun/linkshelf/internal/linkcheck"
	"github.com/meanun/linkshelf/internal/session"
	"github.com/meanun/linkshelf/internal/store"
	tele "gopkg.in/telebot.v3"
	"gorm.io/gorm"
)

const (
	deadlinkDefaultLimit = 50
	deadlinkMaxLimit     = 1000
	auditDefaultLimit    = 20
	auditMaxLimit        = 200
	topTitlesDefault     = 10
	topTitlesMax         = 50
	topUsersLimit        = 10
	probeWorkers         = 10
)

// Bot wires the Telegram API to the catalog store.
type Bot struct {
	tg       *tele.Bot
	db       *gorm.DB
	cfg      *config.Config
	sessions *session.Manager
	prober   *linkcheck.Prober
}

// Opts holds parameters for creating a Bot.
type Opts struct {
	DB     *gorm.DB
	Config *config.Config
}

// New connects to the Telegram API and registers all handlers.
func New(opts Opts) (*Bot, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("bot: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("bot: config is required")
	}

	pref := tele.Settings{
		Token:  opts.Config.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			if c != nil && c.Chat() != nil {
				log.Printf("bot: update error in chat %d: %v", c.Chat().ID, err)
				return
			}
			log.Printf("bot: update error: %v", err)
		},
	}
	tg, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("bot: connect telegram: %w", err)
	}

	b := &Bot{
		tg:       tg,
		db:       opts.DB,
		cfg:      opts.Config,
		sessions: session.NewManager(time.Duration(opts.Config.SessionTimeoutSeconds) * time.Second),
		prober:   linkcheck.NewProber(0),
	}
	b.registerHandlers()
	return b, nil
}

// Start begins long polling. It blocks until Stop is called.
func (b *Bot) Start() {
	// Drop updates that queued up while the bot was down.
	if err := b.tg.RemoveWebhook(true); err != nil {
		log.Printf("bot: remove webhook: %v", err)
	}
	log.Printf("bot: started as @%s", b.tg.Me.Username)
	b.tg.Start()
}

// Stop halts the poller.
func (b *Bot) Stop() {
	b.tg.Stop()
}

func (b *Bot) registerHandlers() {
	// User surface.
	b.tg.Handle("/start", b.handleStart)
	b.tg.Handle("/help", b.handleHelp)
	b.tg.Handle("/link", b.tracked("link", b.handleLink))
	b.tg.Handle("/list", b.handleList)
	b.tg.Handle("/search", b.handleSearch)
	b.tg.Handle("/updated", b.handleUpdated)
	b.tg.Handle("/lastupdate", b.handleLastUpdate)
	b.tg.Handle("/listep", b.handleListEp)
	b.tg.Handle("/getuserid", b.handleGetUserID)
	b.tg.Handle("/donate", b.handleDonate)

	// Admin surface.
	b.tg.Handle("/admin", b.handleAdmin)
	b.tg.Handle("/searchbyadmin", b.handleSearchByAdmin)
	b.tg.Handle("/addadmin", b.handleAddAdmin)
	b.tg.Handle("/removeadmin", b.handleRemoveAdmin)
	b.tg.Handle("/listadmin", b.handleListAdmin)
	b.tg.Handle("/auditlog", b.handleAuditLog)
	b.tg.Handle("/badlinks", b.handleBadLinks)
	b.tg.Handle("/checktitlelinks", b.handleCheckTitleLinks)
	b.tg.Handle("/duplinks", b.handleDupLinks)
	b.tg.Handle("/toptitles", b.handleTopTitles)
	b.tg.Handle("/topusers", b.handleTopUsers)

	// Input flows.
	b.tg.Handle("/cancel", b.handleCancel)
	b.tg.Handle("/done", b.handleDone)
	b.tg.Handle(tele.OnText, b.handleText)
	b.tg.Handle(tele.OnCallback, b.handleCallback)

	// Groups stay clean of join/leave noise.
	b.tg.Handle(tele.OnUserJoined, b.deleteServiceMessage)
	b.tg.Handle(tele.OnUserLeft, b.deleteServiceMessage)
}

// tracked records browse-command usage before running the handler. The
// usage log feeds the monthly top-user report.
func (b *Bot) tracked(command string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() != nil {
			if err := store.AddUsage(b.db, c.Sender().ID, command); err != nil {
				log.Printf("bot: record usage: %v", err)
			}
		}
		return h(c)
	}
}

// actor resolves the sender's role for permission checks.
func (b *Bot) actor(c tele.Context) (authz.Actor, error) {
	if c.Sender() == nil {
		return authz.Actor{}, fmt.Errorf("bot: no sender")
	}
	return authz.Resolve(b.db, b.cfg, c.Sender().ID)
}

// autoDelete schedules msg for deletion after the configured delay.
// Admin-surface traffic is deleted so management chatter does not
// linger in group chats.
func (b *Bot) autoDelete(msg *tele.Message) {
	delay := b.cfg.AutoDeleteDelay()
	if msg == nil || delay <= 0 {
		return
	}
	time.AfterFunc(delay, func() {
		if err := b.tg.Delete(msg); err != nil {
			log.Printf("bot: auto-delete message %d: %v", msg.ID, err)
		}
	})
}

// deleteServiceMessage removes join/leave notices immediately.
func (b *Bot) deleteServiceMessage(c tele.Context) error {
	return c.Delete()
}

// reply sends text and schedules the reply (and the triggering message,
// when adminSurface) for auto deletion.
func (b *Bot) reply(c tele.Context, adminSurface bool, text string, opts ...interface{}) error {
	if adminSurface {
		b.autoDelete(c.Message())
	}
	msg, err := b.tg.Send(c.Chat(), text, opts...)
	if err != nil {
		return err
	}
	if adminSurface {
		b.autoDelete(msg)
	}
	return nil
}

// sendLong sends text in line-aligned chunks under the Telegram size
// limit.
func (b *Bot) sendLong(c tele.Context, adminSurface bool, text string) error {
	for _, chunk := range chunkText(text, maxChunkChars) {
		if err := b.reply(c, adminSurface, chunk); err != nil {
			return err
		}
	}
	return nil
}
