// Package bot drives the review-and-apply workflow: it turns photos and
// replies into extraction runs, confirmation sessions and ledger
// mutations, speaking to the user only through the Presenter.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kitakits/stock-ledger/internal/extract"
	"github.com/kitakits/stock-ledger/internal/ledger"
	"github.com/kitakits/stock-ledger/internal/session"
	"github.com/kitakits/stock-ledger/internal/vision"
)

// Presenter is the abstract presentation layer. The bot has no idea
// which chat transport sits behind it.
type Presenter interface {
	PresentText(ownerID, text string) error
	PresentOptions(ownerID, text string, options []session.Option) error
}

// Bot binds extraction, sessions and the ledger together for one
// conversation surface.
type Bot struct {
	sessions  *session.Store
	ledger    ledger.Store
	extractor vision.Extractor
	presenter Presenter
}

// New creates a Bot.
func New(sessions *session.Store, ledgerStore ledger.Store, extractor vision.Extractor, presenter Presenter) *Bot {
	return &Bot{
		sessions:  sessions,
		ledger:    ledgerStore,
		extractor: extractor,
		presenter: presenter,
	}
}

// HandlePhoto runs the extraction pipeline over an uploaded photo and
// opens the confirmation review.
func (b *Bot) HandlePhoto(ctx context.Context, ownerID string, image []byte, contentType string) error {
	sess, ok := b.sessions.Get(ownerID)
	if !ok {
		return b.presenter.PresentText(ownerID, "Tell me what the photo shows first: reply 'inventory' for a stock list or 'sales' for a sales list, then send it again.")
	}
	if sess.State == session.StateConfirming {
		return b.presenter.PresentText(ownerID, "You still have items waiting for review. Save, retry or skip them before sending another photo.")
	}

	raw, err := b.extractor.Extract(ctx, image, contentType, sess.Kind)
	if err != nil {
		slog.Error("Extraction failed", "owner", ownerID, "kind", sess.Kind, "error", err)
		return b.presenter.PresentText(ownerID, "I could not read that photo. Please try again with a clearer shot.")
	}

	return b.review(sess, raw)
}

// HandleList treats typed text as a stock or sales list, for owners who
// prefer typing over photographing.
func (b *Bot) HandleList(ownerID, text string) error {
	sess, ok := b.sessions.Get(ownerID)
	if !ok || sess.State != session.StateAwaitingUpload {
		return b.presenter.PresentText(ownerID, unknownReply)
	}
	return b.review(sess, extract.RawResult{RawText: text, Confidence: 1})
}

// review normalizes a raw extraction into candidates and presents the
// first page, or reports a batch that yielded nothing.
func (b *Bot) review(sess *session.Session, raw extract.RawResult) error {
	candidates, dropped := extract.Normalize(raw, sess.Kind)
	if dropped > 0 {
		slog.Info("Discarded malformed entries", "owner", sess.OwnerID, "kind", sess.Kind, "dropped", dropped)
	}

	if len(candidates) == 0 {
		// Echo what was read so the owner can see why nothing matched.
		msg := "I could not find any records in that."
		if strings.TrimSpace(raw.RawText) != "" {
			msg += "\n\nHere is what I read:\n" + strings.TrimSpace(raw.RawText)
		}
		msg += "\n\nPlease try again."
		return b.presenter.PresentText(sess.OwnerID, msg)
	}

	if err := sess.EnterConfirming(candidates, raw.Confidence); err != nil {
		return err
	}
	b.sessions.Put(sess)
	return b.presentReview(sess)
}

func (b *Bot) presentReview(sess *session.Session) error {
	return b.presenter.PresentOptions(sess.OwnerID, sess.Render(), sess.Options())
}

// HandleOption drives the confirmation state machine from a selected
// option. A missing or expired session restarts the conversation
// instead of surfacing an error.
func (b *Bot) HandleOption(ownerID, optionID string) error {
	sess, ok := b.sessions.Get(ownerID)
	if !ok {
		return b.presenter.PresentText(ownerID, "That review has expired. Reply 'inventory' or 'sales' to start over.")
	}

	switch optionID {
	case session.OptionConfirmAll:
		return b.confirmAll(sess)
	case session.OptionReview:
		return b.reviewDetails(sess)
	case session.OptionPrevPage:
		return b.turnPage(sess, -1)
	case session.OptionNextPage:
		return b.turnPage(sess, +1)
	case session.OptionRetry:
		if err := sess.Retry(); err != nil {
			return err
		}
		b.sessions.Put(sess)
		return b.presenter.PresentText(ownerID, "Okay, discarded. Send a clearer photo of the same list.")
	case session.OptionSkip:
		if err := sess.Skip(); err != nil {
			return err
		}
		b.sessions.Delete(ownerID)
		return b.presenter.PresentText(ownerID, "Skipped. Nothing was saved.")
	}

	return b.presenter.PresentText(ownerID, unknownReply)
}

// confirmAll applies every candidate in the session, not just the
// visible page. Failures are collected per item; successes stay
// committed.
func (b *Bot) confirmAll(sess *session.Session) error {
	candidates, err := sess.ConfirmAll()
	if err != nil {
		return err
	}
	b.sessions.Delete(sess.OwnerID)

	saved := 0
	var failures []string
	for _, cand := range candidates {
		if applyErr := b.apply(sess.OwnerID, cand); applyErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", candidateName(cand), applyErr))
			continue
		}
		saved++
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Saved %d of %d records.", saved, len(candidates))
	if len(failures) > 0 {
		report.WriteString("\n\nNot saved:")
		for _, f := range failures {
			report.WriteString("\n- " + f)
		}
	}
	return b.presenter.PresentText(sess.OwnerID, report.String())
}

// apply writes one confirmed candidate to the ledger. Sales always go
// through the guarded path so stock can never go negative.
func (b *Bot) apply(ownerID string, cand extract.Candidate) error {
	switch cand.Kind {
	case extract.KindSales:
		sale := cand.Sale
		_, err := b.ledger.RecordSale(ownerID, sale.ItemName, sale.Quantity, sale.UnitPrice)
		return err
	default:
		inv := cand.Inventory
		_, err := b.ledger.AddOrMerge(ownerID, ledger.Item{
			Name:     inv.Name,
			Price:    inv.Price,
			Quantity: inv.Quantity,
			Unit:     inv.Unit,
			Category: inv.Category,
		})
		return err
	}
}

// reviewDetails lists the full candidate set so the owner can check
// every line, then shows the page actions again.
func (b *Bot) reviewDetails(sess *session.Session) error {
	if sess.State != session.StateConfirming {
		return session.ErrNotConfirming
	}

	var details strings.Builder
	details.WriteString("Everything I found:\n")
	for i, cand := range sess.Candidates {
		fmt.Fprintf(&details, "%d. %s\n", i+1, cand.Describe())
	}
	details.WriteString("\nTo fix a line, retry with a clearer photo or skip and type the corrected list.")
	if err := b.presenter.PresentText(sess.OwnerID, details.String()); err != nil {
		return err
	}
	return b.presentReview(sess)
}

func (b *Bot) turnPage(sess *session.Session, delta int) error {
	if err := sess.GoToPage(sess.PageIndex + delta); err != nil {
		// Stale control; just re-show the current page.
		slog.Debug("Ignoring page turn", "owner", sess.OwnerID, "error", err)
	} else {
		b.sessions.Put(sess)
	}
	return b.presentReview(sess)
}

func candidateName(cand extract.Candidate) string {
	if cand.Kind == extract.KindSales {
		return cand.Sale.ItemName
	}
	return cand.Inventory.Name
}
