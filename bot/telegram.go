package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/web3guy0/goldsniper/barrier"
	"github.com/web3guy0/goldsniper/core"
	"github.com/web3guy0/goldsniper/storage"
	"github.com/web3guy0/goldsniper/strategy"
	"github.com/web3guy0/goldsniper/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TELEGRAM BOT - Signal alerts & status commands
// ═══════════════════════════════════════════════════════════════════════════════
//
// Features:
//   🚨 Alert when the sniper moves into a watch or signal
//   📊 /status   current price and status
//   🧱 /barriers barrier table
//   📜 /history  recent transitions (when the journal is on)
//
// ═══════════════════════════════════════════════════════════════════════════════

const sendWait = 5 * time.Second

// StatusProvider exposes the engine's latest report
type StatusProvider interface {
	LastReport() *types.Report
	Stats() (ticks, failures uint64)
}

// HistoryProvider exposes journaled transitions
type HistoryProvider interface {
	Recent(limit int) ([]storage.SignalEvent, error)
}

// TelegramBot manages the Telegram interface
type TelegramBot struct {
	mu      sync.RWMutex
	api     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	running bool
	stopCh  chan struct{}

	status  StatusProvider
	history HistoryProvider
	filter  core.TransitionFilter
}

// NewTelegramBot creates a new Telegram bot
func NewTelegramBot(token string, chatID int64, status StatusProvider) (*TelegramBot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot := &TelegramBot{
		api:     api,
		chatID:  chatID,
		limiter: newSendLimiter(),
		stopCh:  make(chan struct{}),
		status:  status,
	}

	log.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram bot initialized")
	return bot, nil
}

// SetHistory enables /history
func (b *TelegramBot) SetHistory(h HistoryProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = h
}

// Name implements core.Sink
func (b *TelegramBot) Name() string { return "telegram" }

// Start begins listening for commands
func (b *TelegramBot) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	go b.commandLoop()
	log.Info().Msg("📱 Telegram bot started")
}

// Stop stops the bot
func (b *TelegramBot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}

	b.running = false
	b.api.StopReceivingUpdates()
	close(b.stopCh)
	log.Info().Msg("Telegram bot stopped")
}

// ═══════════════════════════════════════════════════════════════════════════════
// NOTIFICATIONS
// ═══════════════════════════════════════════════════════════════════════════════

// OnReport alerts on transitions into a watch or signal and on feed outages
func (b *TelegramBot) OnReport(r *types.Report) {
	if msg := FormatFeedEvent(r); msg != "" {
		b.sendMarkdown(msg)
	}
	if !b.filter.Changed(r) {
		return
	}
	if !r.Status().Kind.Actionable() {
		return
	}
	b.sendMarkdown(FormatSignal(types.NewSignalRecord(r)))
}

// NotifyStartup sends startup notification
func (b *TelegramBot) NotifyStartup(source string, set *barrier.Set, trigger string) {
	msg := fmt.Sprintf(`👑 *GOLD SNIPER STARTED*
━━━━━━━━━━━━━━━━━━━━

📡 Feed: *%s*
🧱 Barriers: *%d*
🎯 Trigger: *%s pts*

Use /help for commands`, source, set.Len(), trigger)

	b.sendMarkdown(msg)
}

// FormatSignal renders a transition alert
func FormatSignal(rec types.SignalRecord) string {
	st := strategy.Status{Kind: rec.Kind, Magnitude: rec.Magnitude}

	var lines []string
	lines = append(lines, "*"+st.Title()+"*", "")
	lines = append(lines, fmt.Sprintf("💵 Price: *$%s*", rec.Price.StringFixed(2)))
	if rec.Zone != "" {
		lines = append(lines, fmt.Sprintf("🧱 Zone: *%s*", rec.Zone))
	}
	for _, d := range st.Detail() {
		lines = append(lines, "📝 "+d)
	}
	lines = append(lines, fmt.Sprintf("🕐 %s", rec.Timestamp.Format("15:04:05")))
	return strings.Join(lines, "\n")
}

// FormatFeedEvent renders a feed outage or recovery, empty for steady ticks
func FormatFeedEvent(r *types.Report) string {
	switch r.Health {
	case types.FeedDown:
		reason := "unknown"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		return fmt.Sprintf("📡 *FEED DOWN* (%s)\nStill retrying every %s\nLast error: `%s`", r.Source, r.Interval, reason)
	case types.FeedRestored:
		return fmt.Sprintf("✅ *Feed restored* (%s)\nXAU/USD $%s", r.Source, r.Price.StringFixed(2))
	default:
		return ""
	}
}

// FormatStatus renders /status
func FormatStatus(r *types.Report, ticks, failures uint64) string {
	if r == nil {
		return "⏳ No tick yet"
	}
	if !r.Available {
		return fmt.Sprintf("⚠️ *Connecting to feed* (%s)\nRetrying every %s\nTicks: %d | Failed: %d",
			r.Source, r.Interval, ticks, failures)
	}

	st := r.Status()
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *XAU/USD $%s*\n", r.Price.StringFixed(2))
	fmt.Fprintf(&b, "%s\n", st.Title())
	for _, d := range st.Detail() {
		fmt.Fprintf(&b, "%s\n", d)
	}
	if res := r.Result; res != nil {
		if res.NearestResistance != nil {
			fmt.Fprintf(&b, "🔴 Resistance: %s\n", res.NearestResistance)
		}
		if res.NearestSupport != nil {
			fmt.Fprintf(&b, "🟢 Support: %s\n", res.NearestSupport)
		}
	}
	fmt.Fprintf(&b, "Ticks: %d | Failed: %d", ticks, failures)
	return b.String()
}

// FormatBarriers renders /barriers, highest zone first
func FormatBarriers(rows []barrier.Row) string {
	var b strings.Builder
	b.WriteString("🧱 *Barriers*\n```\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%10s %10s  %s\n",
			row.Range.Lower.StringFixed(3), row.Range.Upper.StringFixed(3), row.Label)
	}
	b.WriteString("```")
	return b.String()
}

// ═══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLING
// ═══════════════════════════════════════════════════════════════════════════════

func (b *TelegramBot) commandLoop() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-b.stopCh:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			// Only respond to authorized chat
			if update.Message.Chat.ID != b.chatID {
				continue
			}

			b.handleCommand(update.Message)
		}
	}
}

func (b *TelegramBot) handleCommand(msg *tgbotapi.Message) {
	switch strings.ToLower(msg.Command()) {
	case "start", "help":
		b.cmdHelp()
	case "status":
		b.cmdStatus()
	case "barriers":
		b.cmdBarriers()
	case "history":
		b.cmdHistory()
	default:
		b.send("Unknown command. Use /help")
	}
}

func (b *TelegramBot) cmdHelp() {
	b.sendMarkdown(`👑 *Gold Sniper*

/status - price and current signal
/barriers - barrier table
/history - recent transitions
/help - this message`)
}

func (b *TelegramBot) cmdStatus() {
	if b.status == nil {
		b.send("Status unavailable")
		return
	}
	ticks, failures := b.status.Stats()
	b.sendMarkdown(FormatStatus(b.status.LastReport(), ticks, failures))
}

func (b *TelegramBot) cmdBarriers() {
	if b.status == nil {
		b.send("Status unavailable")
		return
	}
	r := b.status.LastReport()
	if r == nil || r.Result == nil {
		b.send("⏳ Waiting for a price")
		return
	}
	b.sendMarkdown(FormatBarriers(r.Result.Rows))
}

func (b *TelegramBot) cmdHistory() {
	b.mu.RLock()
	h := b.history
	b.mu.RUnlock()

	if h == nil {
		b.send("Journal disabled")
		return
	}

	events, err := h.Recent(10)
	if err != nil {
		b.send("Failed to load history")
		log.Error().Err(err).Msg("history query failed")
		return
	}
	if len(events) == 0 {
		b.send("No transitions yet")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 *Recent transitions*\n")
	for _, ev := range events {
		fmt.Fprintf(&sb, "%s  %s  $%s\n", ev.EmittedAt.Format("01-02 15:04:05"), ev.Kind, ev.Price.StringFixed(2))
	}
	b.sendMarkdown(sb.String())
}

// newSendLimiter keeps a single chat under Telegram's one message per second
func newSendLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 3)
}

// wait blocks for a send slot, giving up after sendWait
func (b *TelegramBot) wait() bool {
	ctx, cancel := context.WithTimeout(context.Background(), sendWait)
	defer cancel()
	if err := b.limiter.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("Telegram rate limit, message dropped")
		return false
	}
	return true
}

func (b *TelegramBot) send(text string) {
	if !b.wait() {
		return
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send Telegram message")
	}
}

func (b *TelegramBot) sendMarkdown(text string) {
	if !b.wait() {
		return
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send Telegram message")
	}
}
