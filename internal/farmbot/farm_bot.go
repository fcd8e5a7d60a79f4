package farmbot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
	"github.com/saske7779/Web-app-granja/internal/config"
	"github.com/saske7779/Web-app-granja/internal/farmbot/buttons"
	appModels "github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/services"
	"github.com/saske7779/Web-app-granja/internal/util"
)

var log = config.InitLogger()

type FarmBot struct {
	token       string
	adminChatId int64
	as          *services.AccountService
	ls          *services.LedgerService
	lots        *services.LotService
	notifier    *Notifier
}

func NewFarmBot(token string, adminChatId int64, as *services.AccountService,
	ls *services.LedgerService, lots *services.LotService, notifier *Notifier) *FarmBot {
	return &FarmBot{
		token:       token,
		adminChatId: adminChatId,
		as:          as,
		ls:          ls,
		lots:        lots,
		notifier:    notifier,
	}
}

func (t *FarmBot) StartBot() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := []bot.Option{
		bot.WithDefaultHandler(t.handler),
	}

	tgbot, err := bot.New(t.token, opts...)
	if err != nil {
		log.Error("Failed to start bot: ", err)
		return err
	}

	t.notifier.Bind(tgbot)

	tgbot.Start(ctx)

	return nil
}

func (t *FarmBot) handler(ctx context.Context, b *bot.Bot, update *botModels.Update) {
	if update == nil {
		return
	}

	if update.Message != nil {
		t.handleMessage(ctx, b, update.Message)
	}

	if update.CallbackQuery != nil {
		callback := update.CallbackQuery

		answer := t.handleCallback(ctx, b, callback)

		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            answer,
		}); err != nil {
			log.Error("AnswerCallbackQuery: ", err)
		}
	}
}

func (t *FarmBot) handleMessage(ctx context.Context, b *bot.Bot, msg *botModels.Message) {
	if msg.Chat.Type != botModels.ChatTypePrivate {
		return
	}

	text := msg.Text

	if strings.HasPrefix(text, "/start") {
		t.start(ctx, b, msg)
		return
	}

	if msg.From == nil || msg.From.ID != t.adminChatId {
		return
	}

	args := strings.Fields(text)
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "/info":
		t.adminInfo(ctx, b, msg)
	case "/infouse":
		t.adminInfoUser(ctx, b, msg, args)
	case "/addbalance":
		t.adminAdjustBalance(ctx, b, msg, args, 1)
	case "/quitbalance":
		t.adminAdjustBalance(ctx, b, msg, args, -1)
	case "/addlot":
		t.adminLot(ctx, b, msg, args, true)
	case "/quitlot":
		t.adminLot(ctx, b, msg, args, false)
	case "/banuser":
		t.adminBan(ctx, b, msg, args, true)
	case "/unbanuser":
		t.adminBan(ctx, b, msg, args, false)
	case "/adminhelp":
		t.sendAdmin(b, adminHelpText())
	}
}

func (t *FarmBot) start(ctx context.Context, b *bot.Bot, msg *botModels.Message) {
	if msg.From == nil {
		return
	}

	referralCode := ""
	if parts := strings.Fields(msg.Text); len(parts) > 1 {
		referralCode = parts[1]
	}

	acc, created, err := t.as.Register(
		ctx,
		msg.From.ID,
		msg.From.Username,
		msg.From.FirstName,
		msg.From.LastName,
		referralCode,
	)
	if err != nil {
		log.Error("Failed to register account: ", err)
		if _, err := util.SendTextMessage(b, msg.Chat.ID,
			"Ocurrió un error al registrar tu usuario. Por favor, intenta nuevamente."); err != nil {
			log.Error(err)
		}
		return
	}

	if acc.Banned {
		if _, err := util.SendTextMessage(b, msg.Chat.ID,
			"🚫 Tu cuenta está baneada. Contacta al soporte para más información."); err != nil {
			log.Error(err)
		}
		return
	}

	if _, err := util.SendTextMessage(b, msg.Chat.ID, startResponse(acc, created)); err != nil {
		log.Error(err)
	}
}

func (t *FarmBot) handleCallback(ctx context.Context, b *bot.Bot, callback *botModels.CallbackQuery) string {
	action, txId, ok := splitCallback(callback.Data)
	if !ok {
		return ""
	}

	var err error
	var answer string

	switch action {
	case buttons.ApproveDepositId:
		err = t.ls.ApproveDeposit(ctx, txId)
		answer = "Depósito aprobado"
	case buttons.RejectDepositId:
		err = t.ls.RejectDeposit(ctx, txId)
		answer = "Depósito rechazado"
	case buttons.ApproveWithdrawalId:
		err = t.ls.ApproveWithdrawal(ctx, txId)
		answer = "Retiro aprobado"
	case buttons.RejectWithdrawalId:
		err = t.ls.RejectWithdrawal(ctx, txId)
		answer = "Retiro rechazado"
	default:
		return ""
	}

	if err != nil {
		return resolveErrorText(err)
	}

	t.clearKeyboard(ctx, b, callback)

	return answer
}

// clearKeyboard drops the inline buttons from an already handled request.
func (t *FarmBot) clearKeyboard(ctx context.Context, b *bot.Bot, callback *botModels.CallbackQuery) {
	if callback.Message.Type == botModels.MaybeInaccessibleMessageTypeInaccessibleMessage {
		return
	}
	msg := callback.Message.Message

	if err := util.EditMessageMarkup(ctx, b, msg.Chat.ID, msg.ID,
		&botModels.InlineKeyboardMarkup{InlineKeyboard: [][]botModels.InlineKeyboardButton{}}); err != nil {
		log.Error("EditMessageMarkup: ", err)
	}
}

func (t *FarmBot) adminInfo(ctx context.Context, b *bot.Bot, msg *botModels.Message) {
	stats, err := t.as.Stats(ctx)
	if err != nil {
		t.sendAdmin(b, "Error en la base de datos.")
		return
	}

	t.sendAdmin(b, fmt.Sprintf(
		"📊 Información del Bot\n\nTotal de usuarios: %d\nUsuarios activos: %d\nUsuarios baneados: %d\nDepósitos totales: $%s USDT",
		stats.Accounts, stats.Active, stats.Banned, util.FormatAmount(stats.ApprovedDeposits)))
}

func (t *FarmBot) adminInfoUser(ctx context.Context, b *bot.Bot, msg *botModels.Message, args []string) {
	if len(args) != 2 {
		t.sendAdmin(b, "Uso: /infouse <telegramId>")
		return
	}

	telegramId, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		t.sendAdmin(b, "Uso: /infouse <telegramId>")
		return
	}

	acc, err := t.as.GetByTelegramId(ctx, telegramId)
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if acc.Banned {
		t.sendAdmin(b, fmt.Sprintf(
			"📋 Información del usuario\n\nUsuario: %s %s\nID: %d\nEstado: Baneado",
			acc.FirstName, acc.LastName, acc.TelegramId))
		return
	}

	snap, err := t.as.Snapshot(ctx, acc.Id.Int64)
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	t.sendAdmin(b, fmt.Sprintf(
		"📋 Información del usuario\n\n"+
			"Usuario: %s %s\nID: %d\nUsername: @%s\nBalance: $%s\n"+
			"Ganancia diaria: $%s\n"+
			"Huevos: %d\nPollos: %d\nGallinas: %d\nGallos: %d\nPavos: %d\n"+
			"Referidos: %d\nGanancias por referidos: $%s\nEstado: Activo",
		acc.FirstName, acc.LastName, acc.TelegramId, acc.Username,
		util.FormatAmount(snap.Balance),
		util.FormatIncome(snap.DailyIncome),
		snap.Quantities[appModels.AssetEgg],
		snap.Quantities[appModels.AssetChicken],
		snap.Quantities[appModels.AssetHen],
		snap.Quantities[appModels.AssetRooster],
		snap.Quantities[appModels.AssetTurkey],
		snap.ReferralCount,
		util.FormatAmount(snap.ReferralEarnings)))
}

func (t *FarmBot) adminAdjustBalance(ctx context.Context, b *bot.Bot, msg *botModels.Message, args []string, sign float64) {
	if len(args) != 3 {
		t.sendAdmin(b, "Uso: /addbalance <cantidad> <telegramId>")
		return
	}

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 {
		t.sendAdmin(b, "Cantidad inválida.")
		return
	}

	acc, err := t.accountByArg(ctx, args[2])
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if err := t.ls.AdjustBalance(ctx, acc.Id.Int64, sign*amount); err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if sign > 0 {
		t.sendAdmin(b, fmt.Sprintf("Se añadieron $%s al balance del usuario %d.",
			util.FormatAmount(amount), acc.TelegramId))
	} else {
		t.sendAdmin(b, fmt.Sprintf("Se quitaron $%s del balance del usuario %d.",
			util.FormatAmount(amount), acc.TelegramId))
	}
}

func (t *FarmBot) adminLot(ctx context.Context, b *bot.Bot, msg *botModels.Message, args []string, grant bool) {
	if len(args) != 4 {
		t.sendAdmin(b, "Uso: /addlot <tipo> <cantidad> <telegramId>")
		return
	}

	assetType := appModels.AssetType(args[1])
	quantity, err := strconv.Atoi(args[2])
	if err != nil {
		t.sendAdmin(b, "Cantidad inválida.")
		return
	}

	acc, err := t.accountByArg(ctx, args[3])
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if grant {
		err = t.lots.Grant(ctx, acc.Id.Int64, assetType, quantity)
	} else {
		err = t.lots.Revoke(ctx, acc.Id.Int64, assetType, quantity)
	}
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if grant {
		t.sendAdmin(b, fmt.Sprintf("Se añadieron %d %s al usuario %d.", quantity, assetType, acc.TelegramId))
	} else {
		t.sendAdmin(b, fmt.Sprintf("Se quitaron %d %s del usuario %d.", quantity, assetType, acc.TelegramId))
	}
}

func (t *FarmBot) adminBan(ctx context.Context, b *bot.Bot, msg *botModels.Message, args []string, ban bool) {
	if len(args) != 2 {
		t.sendAdmin(b, "Uso: /banuser <telegramId>")
		return
	}

	acc, err := t.accountByArg(ctx, args[1])
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if ban {
		err = t.as.Ban(ctx, acc.Id.Int64)
	} else {
		err = t.as.Unban(ctx, acc.Id.Int64)
	}
	if err != nil {
		t.sendAdmin(b, resolveErrorText(err))
		return
	}

	if ban {
		t.sendAdmin(b, fmt.Sprintf("El usuario %d fue baneado y sus datos eliminados.", acc.TelegramId))
	} else {
		t.sendAdmin(b, fmt.Sprintf("El usuario %d fue desbaneado y sus datos reiniciados.", acc.TelegramId))
	}
}

func (t *FarmBot) accountByArg(ctx context.Context, arg string) (*appModels.Account, error) {
	telegramId, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, appModels.ErrAccountNotFound
	}

	return t.as.GetByTelegramId(ctx, telegramId)
}

func (t *FarmBot) sendAdmin(b *bot.Bot, text string) {
	if _, err := util.SendTextMessage(b, t.adminChatId, text); err != nil {
		log.Error(err)
	}
}

func splitCallback(data string) (string, int64, bool) {
	idx := strings.LastIndex(data, ":")
	if idx < 0 {
		return "", 0, false
	}

	id, err := strconv.ParseInt(data[idx+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}

	return data[:idx], id, true
}

func resolveErrorText(err error) string {
	switch {
	case errors.Is(err, appModels.ErrAccountNotFound):
		return "Usuario no encontrado."
	case errors.Is(err, appModels.ErrTransactionNotFound):
		return "Transacción no encontrada."
	case errors.Is(err, appModels.ErrAlreadyProcessed):
		return "La transacción ya fue procesada."
	case errors.Is(err, appModels.ErrAccountBanned):
		return "El usuario está baneado."
	case errors.Is(err, appModels.ErrAlreadyBanned):
		return "El usuario ya está baneado."
	case errors.Is(err, appModels.ErrNotBanned):
		return "El usuario no está baneado."
	case errors.Is(err, appModels.ErrInsufficientBalance):
		return "Saldo insuficiente."
	case errors.Is(err, appModels.ErrInsufficientQuantity):
		return "No hay suficientes animales para quitar."
	case errors.Is(err, appModels.ErrCapacityExceeded):
		return "Límite máximo de 50 por tipo alcanzado."
	case errors.Is(err, appModels.ErrInvalidAssetType):
		return "Animal o combo inválido."
	case errors.Is(err, appModels.ErrInvalidQuantity):
		return "Cantidad inválida."
	default:
		return "Error en la base de datos."
	}
}

func startResponse(acc *appModels.Account, created bool) string {
	header := "👋 ¡Bienvenido de nuevo a <b>Granja Virtual</b>!"
	if created {
		header = "👋 ¡Bienvenido a <b>Granja Virtual</b>! Tu cuenta fue creada y recibiste 1 huevo de regalo. 🥚"
	}

	return fmt.Sprintf(`%s

💰 Balance: $%s
🎁 Tu código de referido: <code>%s</code>

Comparte tu código: cada vez que un referido deposite, recibes el 15%% de bono.`,
		header, util.FormatAmount(acc.Balance), acc.ReferralCode)
}

func adminHelpText() string {
	return `📚 Comandos de Administrador

/addbalance <cantidad> <telegramId>
Añade la cantidad al balance del usuario.

/quitbalance <cantidad> <telegramId>
Quita la cantidad del balance del usuario.

/addlot <tipo> <cantidad> <telegramId>
Añade animales (egg, chicken, hen, rooster, turkey).

/quitlot <tipo> <cantidad> <telegramId>
Quita animales activos del usuario.

/banuser <telegramId>
Banea al usuario y elimina todos sus datos.

/unbanuser <telegramId>
Desbanea al usuario y reinicia sus datos.

/info
Muestra estadísticas generales del bot.

/infouse <telegramId>
Muestra la información de un usuario.`
}
