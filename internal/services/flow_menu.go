package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/storage"
	"github.com/Ananth-NQI/dukachat-backend/internal/utils"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

func (e *Engine) idleText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	switch key := keyword(ev.Text); {
	case key == "" || greetingWords[key]:
		return e.mainMenu(ctx, s)
	case cartWords[key]:
		return e.showCart(ctx, s)
	case checkoutWords[key]:
		return e.startCheckout(ctx, s)
	case trackWords[key]:
		return e.startTracking(s)
	case langWords[key]:
		return e.toggleLanguage(ctx, s)
	case isNumber(key):
		return append(one(whatsapp.Text(tr(s.Language, "invalid_choice"))), e.mainMenu(ctx, s)...)
	default:
		return e.mainMenu(ctx, s)
	}
}

func (e *Engine) idleReply(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	prefix, arg := splitReply(ev.ReplyID)
	switch prefix {
	case actionCart:
		return e.showCart(ctx, s)
	case actionClear:
		s.Cart = nil
		return append(one(whatsapp.Text(tr(s.Language, "cart_cleared"))), e.mainMenu(ctx, s)...)
	case actionCheckout:
		return e.startCheckout(ctx, s)
	case actionTrack:
		return e.startTracking(s)
	case actionLang:
		return e.toggleLanguage(ctx, s)
	case prefixProduct:
		return e.withProduct(ctx, s, arg, e.productActions)
	case prefixInfo:
		return e.withProduct(ctx, s, arg, e.productDetails)
	case prefixVariant:
		return e.withProduct(ctx, s, arg, e.variantList)
	case prefixAdd:
		return e.withProduct(ctx, s, arg, e.addToCart)
	case prefixBuy:
		return e.withProduct(ctx, s, arg, e.buyNow)
	default:
		return e.mainMenu(ctx, s)
	}
}

// mainMenu is the product list followed by the cart / track / language actions
func (e *Engine) mainMenu(ctx context.Context, s *models.Session) []whatsapp.Message {
	lang := s.Language
	products, err := e.store.ListProducts(ctx)
	if err != nil {
		log.Printf("list products for %s: %v", s.CustomerID, err)
	}

	var menu whatsapp.Message
	if len(products) == 0 {
		menu = whatsapp.Text(tr(lang, "welcome", e.settings.ShopName) + "\n\n" + tr(lang, "no_products"))
	} else {
		rows := make([]whatsapp.Row, 0, len(products))
		for _, p := range products {
			rows = append(rows, productRow(p))
		}
		menu = whatsapp.List(tr(lang, "welcome", e.settings.ShopName), tr(lang, "products"),
			whatsapp.Section{Title: tr(lang, "products"), Rows: rows})
	}

	cartLabel := tr(lang, "btn_cart")
	if n := models.CartUnits(s.Cart); n > 0 {
		cartLabel = fmt.Sprintf("%s (%d)", cartLabel, n)
	}
	actions := whatsapp.Buttons(tr(lang, "more"),
		whatsapp.Button{ID: actionCart, Title: cartLabel},
		whatsapp.Button{ID: actionTrack, Title: tr(lang, "btn_track")},
		whatsapp.Button{ID: actionLang, Title: tr(lang, "btn_lang")},
	)
	return []whatsapp.Message{menu, actions}
}

func productRow(p *models.Product) whatsapp.Row {
	return whatsapp.Row{
		ID:          replyID(prefixProduct, p.SKU),
		Title:       p.Name,
		Description: utils.FormatMoney(p.Price),
	}
}

func (e *Engine) withProduct(ctx context.Context, s *models.Session, sku string, fn func(context.Context, *models.Session, *models.Product) []whatsapp.Message) []whatsapp.Message {
	p, err := e.store.GetProduct(ctx, sku)
	if err != nil || !p.Active {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("get product %q for %s: %v", sku, s.CustomerID, err)
		}
		return append(one(whatsapp.Text(tr(s.Language, "product_missing"))), e.mainMenu(ctx, s)...)
	}
	return fn(ctx, s, p)
}

// productActions offers add / buy / details, plus variants when the product has children
func (e *Engine) productActions(ctx context.Context, s *models.Session, p *models.Product) []whatsapp.Message {
	lang := s.Language
	variants, err := e.store.ListVariants(ctx, p.SKU)
	if err != nil {
		log.Printf("list variants of %q: %v", p.SKU, err)
	}

	buttons := []whatsapp.Button{
		{ID: replyID(prefixAdd, p.SKU), Title: tr(lang, "btn_add")},
		{ID: replyID(prefixBuy, p.SKU), Title: tr(lang, "btn_buy")},
		{ID: replyID(prefixInfo, p.SKU), Title: tr(lang, "btn_info")},
	}
	if len(variants) > 0 {
		buttons = append(buttons, whatsapp.Button{ID: replyID(prefixVariant, p.SKU), Title: tr(lang, "btn_variant")})
	}

	body := tr(lang, "product", p.Name, utils.FormatMoney(p.Price))
	if len(buttons) <= whatsapp.MaxButtons {
		return one(whatsapp.Buttons(body, buttons...))
	}

	rows := make([]whatsapp.Row, len(buttons))
	for i, b := range buttons {
		rows[i] = whatsapp.Row{ID: b.ID, Title: b.Title}
	}
	return one(whatsapp.List(body, tr(lang, "actions"), whatsapp.Section{Rows: rows}))
}

func (e *Engine) productDetails(ctx context.Context, s *models.Session, p *models.Product) []whatsapp.Message {
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		desc = tr(s.Language, "no_description")
	}
	return append(one(whatsapp.Text("*"+p.Name+"*\n"+desc)), e.productActions(ctx, s, p)...)
}

func (e *Engine) variantList(ctx context.Context, s *models.Session, p *models.Product) []whatsapp.Message {
	variants, err := e.store.ListVariants(ctx, p.SKU)
	if err != nil {
		log.Printf("list variants of %q: %v", p.SKU, err)
	}
	if len(variants) == 0 {
		return e.productActions(ctx, s, p)
	}
	rows := make([]whatsapp.Row, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, productRow(v))
	}
	lang := s.Language
	return one(whatsapp.List(tr(lang, "variants", p.Name), tr(lang, "variants_label"),
		whatsapp.Section{Title: p.Name, Rows: rows}))
}

func (e *Engine) addToCart(_ context.Context, s *models.Session, p *models.Product) []whatsapp.Message {
	s.AddToCart(p.AsCartItem(1))
	lang := s.Language
	return one(whatsapp.Buttons(tr(lang, "added", p.Name, utils.FormatMoney(models.CartSubtotal(s.Cart))),
		whatsapp.Button{ID: actionCheckout, Title: tr(lang, "btn_checkout")},
		whatsapp.Button{ID: actionCart, Title: tr(lang, "btn_cart")},
		whatsapp.Button{ID: actionMenu, Title: tr(lang, "btn_menu")},
	))
}

// buyNow checks out the single item without touching the cart
func (e *Engine) buyNow(_ context.Context, s *models.Session, p *models.Product) []whatsapp.Message {
	item := p.AsCartItem(1)
	s.PendingItem = &item
	s.Step = models.StepAskDeliveryArea
	return one(areaButtons(s.Language))
}

func (e *Engine) showCart(ctx context.Context, s *models.Session) []whatsapp.Message {
	lang := s.Language
	if len(s.Cart) == 0 {
		return append(one(whatsapp.Text(tr(lang, "cart_empty"))), e.mainMenu(ctx, s)...)
	}
	body := tr(lang, "cart") + "\n" + itemLines(s.Cart) + "\n\n" + tr(lang, "subtotal", utils.FormatMoney(models.CartSubtotal(s.Cart)))
	return one(whatsapp.Buttons(body,
		whatsapp.Button{ID: actionCheckout, Title: tr(lang, "btn_checkout")},
		whatsapp.Button{ID: actionClear, Title: tr(lang, "btn_clear")},
		whatsapp.Button{ID: actionMenu, Title: tr(lang, "btn_menu")},
	))
}

func itemLines(items []models.CartItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%d × %s = %s", it.Qty, it.Name, utils.FormatMoney(it.LineTotal()))
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) toggleLanguage(ctx context.Context, s *models.Session) []whatsapp.Message {
	s.Language = s.Language.Toggle()
	return append(one(whatsapp.Text(tr(s.Language, "lang_switched"))), e.mainMenu(ctx, s)...)
}

func (e *Engine) startTracking(s *models.Session) []whatsapp.Message {
	s.Step = models.StepTrackByName
	return one(whatsapp.Text(tr(s.Language, "ask_track")))
}
