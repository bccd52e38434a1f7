package bot

import (
	"fmt"
	"strings"

	"github.com/kitakits/stock-ledger/internal/extract"
	"github.com/kitakits/stock-ledger/internal/session"
)

const (
	lowStockThreshold = 5
	expiringDays      = 7
)

const helpText = `Here is what I can do:

📦 'inventory' - then send a photo of your stock list
💰 'sales' - then send a photo of your sales list
📉 'low stock' - items that are running out
⏰ 'expiring' - items expiring this week
❌ 'cancel' - drop whatever we were doing

You can also type a list instead of photographing it, one item per line, like:
Rice 45 20kg`

const unknownReply = "I did not get that. Reply 'help' to see what I can do."

// HandleText routes a free-text message: a fixed keyword command, or a
// typed list when an upload is pending.
func (b *Bot) HandleText(ownerID, text string) error {
	command := strings.ToLower(strings.TrimSpace(text))

	switch command {
	case "help", "start", "hi", "hello":
		return b.presenter.PresentText(ownerID, helpText)
	case "inventory", "stock", "restock":
		return b.startUpload(ownerID, extract.KindInventory)
	case "sales", "sold", "benta":
		return b.startUpload(ownerID, extract.KindSales)
	case "low stock", "lowstock":
		return b.lowStockReport(ownerID)
	case "expiring", "expiry":
		return b.expiringReport(ownerID)
	case "cancel":
		b.sessions.Delete(ownerID)
		return b.presenter.PresentText(ownerID, "Cancelled. Reply 'help' when you need me.")
	}

	if strings.Contains(text, "\n") || looksLikeRecord(text) {
		return b.HandleList(ownerID, text)
	}
	return b.presenter.PresentText(ownerID, unknownReply)
}

// startUpload opens (or replaces) the owner's session and asks for the
// photo.
func (b *Bot) startUpload(ownerID string, kind extract.Kind) error {
	b.sessions.Put(session.New(ownerID, kind, b.sessions.Clock().Now()))

	if kind == extract.KindSales {
		return b.presenter.PresentText(ownerID, "Send me a photo of your sales list. I will read it and ask you to confirm before saving.")
	}
	return b.presenter.PresentText(ownerID, "Send me a photo of your stock list. I will read it and ask you to confirm before saving.")
}

// looksLikeRecord guesses whether a single line of text is an attempt
// at a record rather than chit-chat: it needs at least one digit.
func looksLikeRecord(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

func (b *Bot) lowStockReport(ownerID string) error {
	items, err := b.ledger.LowStock(ownerID, lowStockThreshold)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.presenter.PresentText(ownerID, "Nothing is running low. 🎉")
	}

	var report strings.Builder
	report.WriteString("📉 Running low:\n")
	for _, item := range items {
		fmt.Fprintf(&report, "- %s: %g %s left\n", item.Name, item.Quantity, item.Unit)
	}
	return b.presenter.PresentText(ownerID, report.String())
}

func (b *Bot) expiringReport(ownerID string) error {
	items, err := b.ledger.Expiring(ownerID, expiringDays)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.presenter.PresentText(ownerID, fmt.Sprintf("Nothing expires in the next %d days.", expiringDays))
	}

	var report strings.Builder
	fmt.Fprintf(&report, "⏰ Expiring within %d days:\n", expiringDays)
	for _, item := range items {
		fmt.Fprintf(&report, "- %s: %s\n", item.Name, item.ExpiryDate.Format("2006-01-02"))
	}
	return b.presenter.PresentText(ownerID, report.String())
}
