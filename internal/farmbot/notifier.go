package farmbot

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/saske7779/Web-app-granja/internal/farmbot/buttons"
	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/util"
)

// Notifier renders ledger events into Telegram messages. It satisfies the
// services notifier port and is bound to the bot instance once it exists.
type Notifier struct {
	adminChatId int64

	mu sync.RWMutex
	bt *bot.Bot
}

func NewNotifier(adminChatId int64) *Notifier {
	return &Notifier{
		adminChatId: adminChatId,
	}
}

func (n *Notifier) Bind(b *bot.Bot) {
	n.mu.Lock()
	n.bt = b
	n.mu.Unlock()
}

func (n *Notifier) bot() *bot.Bot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.bt
}

func (n *Notifier) Notify(ctx context.Context, ev models.Event) {
	b := n.bot()
	if b == nil {
		return
	}

	switch ev.Kind {
	case models.EventDepositRequested:
		n.sendReviewRequest(b, ev, buttons.ApproveDepositId, buttons.RejectDepositId)
	case models.EventWithdrawalRequested:
		n.sendReviewRequest(b, ev, buttons.ApproveWithdrawalId, buttons.RejectWithdrawalId)
	case models.EventDepositResolved:
		n.sendDepositResolved(b, ev)
	case models.EventWithdrawalResolved:
		n.sendWithdrawalResolved(b, ev)
	case models.EventReferralBonusCredited:
		n.sendText(b, ev.TelegramId, fmt.Sprintf(
			"🎉 Has recibido un bono de referido de $%s.", util.FormatAmount(ev.Amount)))
	case models.EventBalanceAdjusted:
		n.sendBalanceAdjusted(b, ev)
	case models.EventAccountBanned:
		n.sendText(b, ev.TelegramId,
			"🚫 Tu cuenta está baneada. Contacta al soporte para más información.")
	case models.EventAccountUnbanned:
		n.sendText(b, ev.TelegramId,
			"✅ Tu cuenta ha sido reactivada. Tus datos fueron reiniciados.")
	}
}

func (n *Notifier) sendReviewRequest(b *bot.Bot, ev models.Event, approveId, rejectId string) {
	var text string
	if ev.Kind == models.EventDepositRequested {
		text = fmt.Sprintf(
			"📥 Nuevo depósito\n\nUsuario: %s %s\nID: %d\n@%s\nCantidad: %s USDT\nRed: %s\n\nID Transacción: %d",
			ev.FirstName, ev.LastName, ev.TelegramId, ev.Username,
			util.FormatAmount(ev.Amount), ev.Network, ev.TransactionId)
	} else {
		text = fmt.Sprintf(
			"📤 Nuevo retiro\n\nUsuario: %s %s\nID: %d\n@%s\nCantidad: %s USDT\nWallet: %s\nRed: %s\n\nID Transacción: %d",
			ev.FirstName, ev.LastName, ev.TelegramId, ev.Username,
			util.FormatAmount(ev.Amount), ev.WalletAddress, ev.Network, ev.TransactionId)
	}

	markup := util.CreateInlineMarkup(1,
		util.CreateDefaultButton(fmt.Sprintf("%s:%d", approveId, ev.TransactionId), buttons.ApproveText),
		util.CreateDefaultButton(fmt.Sprintf("%s:%d", rejectId, ev.TransactionId), buttons.RejectText),
	)

	if _, err := util.SendTextMessageMarkup(b, n.adminChatId, text, markup); err != nil {
		log.Error("Failed to notify admin: ", err)
	}
}

func (n *Notifier) sendDepositResolved(b *bot.Bot, ev models.Event) {
	if ev.Status == models.StatusApproved {
		n.sendText(b, ev.TelegramId, fmt.Sprintf(
			"✅ Tu depósito de %s USDT ha sido aprobado. Tu balance ha sido actualizado.",
			util.FormatAmount(ev.Amount)))
		return
	}
	n.sendText(b, ev.TelegramId, fmt.Sprintf(
		"❌ Tu depósito de %s USDT ha sido rechazado. Por favor, contacta al soporte si crees que esto es un error.",
		util.FormatAmount(ev.Amount)))
}

func (n *Notifier) sendWithdrawalResolved(b *bot.Bot, ev models.Event) {
	if ev.Status == models.StatusApproved {
		n.sendText(b, ev.TelegramId, fmt.Sprintf(
			"✅ Tu retiro de %s USDT ha sido aprobado. Los fondos serán enviados a tu wallet %s en la red %s.",
			util.FormatAmount(ev.Amount), ev.WalletAddress, ev.Network))
		return
	}
	n.sendText(b, ev.TelegramId, fmt.Sprintf(
		"❌ Tu retiro de %s USDT ha sido rechazado. Los fondos han sido devueltos a tu balance.",
		util.FormatAmount(ev.Amount)))
}

func (n *Notifier) sendBalanceAdjusted(b *bot.Bot, ev models.Event) {
	if ev.Amount >= 0 {
		n.sendText(b, ev.TelegramId, fmt.Sprintf(
			"✅ El administrador ha añadido $%s a tu balance.", util.FormatAmount(ev.Amount)))
		return
	}
	n.sendText(b, ev.TelegramId, fmt.Sprintf(
		"⚠️ El administrador ha retirado $%s de tu balance.", util.FormatAmount(-ev.Amount)))
}

func (n *Notifier) sendText(b *bot.Bot, chatId int64, text string) {
	if chatId == 0 {
		return
	}
	if _, err := util.SendTextMessage(b, chatId, text); err != nil {
		log.Error("Failed to send notification: ", err)
	}
}
