package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

func (e *Engine) districtList(s *models.Session) whatsapp.Message {
	lang := s.Language
	districts := e.resolver.Index().Districts()
	rows := make([]whatsapp.Row, 0, len(districts))
	for _, d := range districts {
		rows = append(rows, whatsapp.Row{ID: replyID(prefixDist, d.ID), Title: d.Name})
	}
	msg := whatsapp.List(tr(lang, "ask_district")+"\n"+tr(lang, "gps_hint"), tr(lang, "districts"),
		whatsapp.Section{Title: tr(lang, "districts"), Rows: rows})
	return withOverflowHint(lang, msg)
}

// withOverflowHint tells the customer that rows past the list limit can be
// typed by name; districtText and wardText match against the full set.
func withOverflowHint(lang models.Language, msg whatsapp.Message) whatsapp.Message {
	if msg.RowCount() > whatsapp.MaxRows {
		return msg.WithFooter(tr(lang, "type_name"))
	}
	return msg
}

func (e *Engine) wardList(s *models.Session) whatsapp.Message {
	lang := s.Language
	d, ok := e.resolver.Index().District(s.DistrictID)
	if !ok {
		return e.districtList(s)
	}
	rows := make([]whatsapp.Row, 0, len(d.Wards))
	for _, w := range d.Wards {
		rows = append(rows, whatsapp.Row{ID: replyID(prefixWard, w.ID), Title: w.Name})
	}
	msg := whatsapp.List(tr(lang, "ask_ward", d.Name)+"\n"+tr(lang, "gps_hint"), tr(lang, "wards"),
		whatsapp.Section{Title: d.Name, Rows: rows})
	return withOverflowHint(lang, msg)
}

// streetPage renders the current page. A page that is not the last one gets
// a "more" row; the last page gets skip and share-location rows while they fit.
func (e *Engine) streetPage(s *models.Session) whatsapp.Message {
	lang := s.Language
	_, w, ok := e.resolver.Index().Ward(s.DistrictID, s.WardID)
	if !ok {
		return e.wardList(s)
	}
	page, pages, streets := e.pageStreets(s, w)

	rows := make([]whatsapp.Row, 0, whatsapp.MaxRows)
	for _, st := range streets {
		rows = append(rows, whatsapp.Row{ID: replyID(prefixStreet, st.ID), Title: st.Name})
	}

	body := tr(lang, "ask_street", w.Name, page+1, pages)
	if page < pages-1 {
		rows = append(rows, whatsapp.Row{ID: replyID(prefixStreet, streetNext), Title: tr(lang, "row_next")})
	} else {
		rows = append(rows, whatsapp.Row{ID: replyID(prefixStreet, streetSkip), Title: tr(lang, "row_skip"), Description: tr(lang, "row_skip_desc")})
		if len(rows) < whatsapp.MaxRows {
			rows = append(rows, whatsapp.Row{ID: replyID(prefixStreet, streetGPS), Title: tr(lang, "row_gps"), Description: tr(lang, "row_gps_desc")})
		} else {
			body += "\n" + tr(lang, "gps_hint")
		}
	}
	return whatsapp.List(body, tr(lang, "streets"), whatsapp.Section{Title: w.Name, Rows: rows})
}

// pageStreets clamps the session cursor and returns the visible slice
func (e *Engine) pageStreets(s *models.Session, w *location.Ward) (int, int, []location.Street) {
	size := e.settings.StreetPageSize
	pages := (len(w.Streets) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	page := s.StreetPage
	if page < 0 {
		page = 0
	}
	if page > pages-1 {
		page = pages - 1
	}
	start := page * size
	end := start + size
	if end > len(w.Streets) {
		end = len(w.Streets)
	}
	return page, pages, w.Streets[start:end]
}

func gpsPrompt(lang models.Language) whatsapp.Message {
	return whatsapp.Buttons(tr(lang, "ask_gps"),
		whatsapp.Button{ID: replyID(prefixStreet, streetSkip), Title: tr(lang, "row_skip")},
	)
}

func (e *Engine) districtText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	districts := e.resolver.Index().Districts()
	ids := make([]string, len(districts))
	names := make([]string, len(districts))
	for i, d := range districts {
		ids[i], names[i] = d.ID, d.Name
	}
	i, ok := location.Pick(ev.Text, ids, names)
	if !ok {
		return e.reprompt(ctx, s, ev)
	}
	return e.chooseDistrict(ctx, s, districts[i].ID)
}

func (e *Engine) wardText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	d, ok := e.resolver.Index().District(s.DistrictID)
	if !ok {
		s.Step = models.StepSelectDistrict
		return e.districtText(ctx, s, ev)
	}
	ids := make([]string, len(d.Wards))
	names := make([]string, len(d.Wards))
	for i, w := range d.Wards {
		ids[i], names[i] = w.ID, w.Name
	}
	i, ok := location.Pick(ev.Text, ids, names)
	if !ok {
		return e.reprompt(ctx, s, ev)
	}
	return e.chooseWard(ctx, s, d.Wards[i].ID)
}

// streetText resolves numbers against the visible page only. Names are
// matched across the ward; unknown names still go to the resolver, which
// falls back to the ward estimate.
func (e *Engine) streetText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	_, w, ok := e.resolver.Index().Ward(s.DistrictID, s.WardID)
	if !ok {
		return e.reprompt(ctx, s, ev)
	}
	key := keyword(ev.Text)
	switch {
	case key == "":
		return e.reprompt(ctx, s, ev)
	case nextWords[key]:
		return e.nextStreetPage(ctx, s)
	case skipWords[key]:
		return e.finishDelivery(ctx, s, nil, "")
	}

	if n, err := strconv.Atoi(key); err == nil {
		_, _, streets := e.pageStreets(s, w)
		if n < 1 || n > len(streets) {
			return e.reprompt(ctx, s, ev)
		}
		return e.finishDelivery(ctx, s, nil, streets[n-1].Name)
	}
	if st, found := w.Street(ev.Text); found {
		return e.finishDelivery(ctx, s, nil, st.Name)
	}
	return e.finishDelivery(ctx, s, nil, ev.Text)
}

func (e *Engine) gpsText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	key := keyword(ev.Text)
	switch {
	case skipWords[key]:
		return e.finishDelivery(ctx, s, nil, "")
	case key != "" && s.WardID != "":
		return e.finishDelivery(ctx, s, nil, ev.Text)
	}
	return e.reprompt(ctx, s, ev)
}

// locationReply handles list and button picks from any location step, so
// tapping an earlier list moves the customer back to that level.
func (e *Engine) locationReply(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	prefix, arg := splitReply(ev.ReplyID)
	switch prefix {
	case prefixDist:
		return e.chooseDistrict(ctx, s, arg)
	case prefixWard:
		return e.chooseWard(ctx, s, arg)
	case prefixStreet:
		switch arg {
		case streetNext:
			return e.nextStreetPage(ctx, s)
		case streetSkip:
			return e.finishDelivery(ctx, s, nil, "")
		case streetGPS:
			s.Step = models.StepAwaitGPS
			return one(gpsPrompt(s.Language))
		}
		_, w, ok := e.resolver.Index().Ward(s.DistrictID, s.WardID)
		if !ok {
			return e.reprompt(ctx, s, ev)
		}
		st, found := w.Street(arg)
		if !found {
			return e.reprompt(ctx, s, ev)
		}
		return e.finishDelivery(ctx, s, nil, st.Name)
	}
	return e.reprompt(ctx, s, ev)
}

func (e *Engine) locationPin(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	if ev.Pin == nil {
		return e.reprompt(ctx, s, ev)
	}
	return e.finishDelivery(ctx, s, ev.Pin, "")
}

func (e *Engine) chooseDistrict(ctx context.Context, s *models.Session, ref string) []whatsapp.Message {
	d, ok := e.resolver.Index().District(ref)
	if !ok {
		return e.prompt(ctx, s, s.CurrentStep())
	}
	s.DistrictID = d.ID
	s.WardID = ""
	s.StreetPage = 0
	s.Step = models.StepSelectWard
	return one(e.wardList(s))
}

func (e *Engine) chooseWard(ctx context.Context, s *models.Session, ref string) []whatsapp.Message {
	_, w, ok := e.resolver.Index().Ward(s.DistrictID, ref)
	if !ok {
		return e.prompt(ctx, s, s.CurrentStep())
	}
	s.WardID = w.ID
	s.StreetPage = 0
	if len(w.Streets) == 0 {
		s.Step = models.StepAwaitGPS
		return one(gpsPrompt(s.Language))
	}
	s.Step = models.StepSelectStreet
	return one(e.streetPage(s))
}

// nextStreetPage advances only when a later page exists
func (e *Engine) nextStreetPage(ctx context.Context, s *models.Session) []whatsapp.Message {
	_, w, ok := e.resolver.Index().Ward(s.DistrictID, s.WardID)
	if !ok {
		return e.prompt(ctx, s, s.CurrentStep())
	}
	if page, pages, _ := e.pageStreets(s, w); page < pages-1 {
		s.StreetPage = page + 1
	}
	s.Step = models.StepSelectStreet
	return one(e.streetPage(s))
}

// finishDelivery prices whatever location detail was captured and places the order
func (e *Engine) finishDelivery(ctx context.Context, s *models.Session, pin *models.LocationPin, street string) []whatsapp.Message {
	ref := models.LocationReference{
		District:   s.DistrictID,
		Ward:       s.WardID,
		StreetName: street,
		Pin:        pin,
	}
	quote := e.resolver.Resolve(ref)
	return e.placeOrder(ctx, s, models.DeliveryModeDelivery, quote, e.describeLocation(ref, quote))
}

func (e *Engine) describeLocation(ref models.LocationReference, q models.DeliveryQuote) string {
	idx := e.resolver.Index()
	var parts []string
	if q.ResolvedStreet != "" {
		parts = append(parts, q.ResolvedStreet)
	} else if ref.StreetName != "" {
		parts = append(parts, ref.StreetName)
	}
	if d, w, ok := idx.Ward(ref.District, ref.Ward); ok {
		parts = append(parts, w.Name, d.Name)
	} else if d, ok := idx.District(ref.District); ok {
		parts = append(parts, d.Name)
	}
	if ref.Pin != nil {
		parts = append(parts, fmt.Sprintf("📍 %.5f,%.5f", ref.Pin.Lat, ref.Pin.Lon))
	}
	return strings.Join(parts, ", ")
}
