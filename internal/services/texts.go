package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

type L = models.Localized

var texts = map[string]L{
	// Main menu
	"welcome":       {EN: "Welcome to %s! 👋\nTap *Products* to browse, or pick an action below.", SW: "Karibu %s! 👋\nBonyeza *Bidhaa* kuangalia, au chagua kitendo hapa chini."},
	"products":      {EN: "Products", SW: "Bidhaa"},
	"more":          {EN: "What else can I help with?", SW: "Nikusaidie nini kingine?"},
	"no_products":   {EN: "Our catalog is being updated. Please check back soon.", SW: "Bidhaa zetu zinasasishwa. Tafadhali rudi baadaye."},
	"btn_cart":      {EN: "🛒 View cart", SW: "🛒 Kikapu"},
	"btn_track":     {EN: "📦 Track order", SW: "📦 Fuatilia oda"},
	"btn_lang":      {EN: "🌐 Kiswahili", SW: "🌐 English"},
	"lang_switched": {EN: "Language set to English.", SW: "Lugha imebadilishwa kuwa Kiswahili."},

	// Products
	"product":         {EN: "*%s*\n%s\n\nWhat would you like to do?", SW: "*%s*\n%s\n\nUngependa kufanya nini?"},
	"product_missing": {EN: "Sorry, that product is no longer available.", SW: "Samahani, bidhaa hiyo haipatikani tena."},
	"actions":         {EN: "Actions", SW: "Vitendo"},
	"btn_add":         {EN: "Add to cart", SW: "Weka kikapuni"},
	"btn_buy":         {EN: "Buy now", SW: "Nunua sasa"},
	"btn_info":        {EN: "More details", SW: "Maelezo zaidi"},
	"btn_variant":     {EN: "Choose variant", SW: "Chagua aina"},
	"variants":        {EN: "Choose a variant of *%s*:", SW: "Chagua aina ya *%s*:"},
	"variants_label":  {EN: "Variants", SW: "Aina"},
	"no_description":  {EN: "No further details for this product.", SW: "Hakuna maelezo zaidi kwa bidhaa hii."},

	// Cart
	"added":        {EN: "✅ Added %s to your cart.\nCart total: %s", SW: "✅ %s imewekwa kikapuni.\nJumla ya kikapu: %s"},
	"cart":         {EN: "🛒 *Your cart*", SW: "🛒 *Kikapu chako*"},
	"cart_empty":   {EN: "Your cart is empty.", SW: "Kikapu chako ni tupu."},
	"cart_cleared": {EN: "🗑️ Your cart has been cleared.", SW: "🗑️ Kikapu chako kimefutwa."},
	"subtotal":     {EN: "Subtotal: %s", SW: "Jumla ndogo: %s"},
	"btn_checkout": {EN: "Checkout", SW: "Lipia"},
	"btn_clear":    {EN: "Clear cart", SW: "Futa kikapu"},
	"btn_menu":     {EN: "Menu", SW: "Menyu"},

	// Checkout
	"ask_area":     {EN: "Where should we deliver your order?", SW: "Tukuletee oda wapi?"},
	"btn_inside":   {EN: "Inside service area", SW: "Ndani ya eneo"},
	"btn_outside":  {EN: "Outside service area", SW: "Nje ya eneo"},
	"ask_mode":     {EN: "Would you like delivery, or will you pick it up?", SW: "Ungependa kuletewa, au utachukua mwenyewe?"},
	"btn_delivery": {EN: "Delivery", SW: "Niletewe"},
	"btn_pickup":   {EN: "Pickup", SW: "Nitachukua"},
	"ask_name":     {EN: "Please type your full name.", SW: "Tafadhali andika jina lako kamili."},
	"ask_phone":    {EN: "Please type a phone number we can call, e.g. 0712 345 678.", SW: "Tafadhali andika namba ya simu tunayoweza kupiga, mf. 0712 345 678."},
	"bad_phone":    {EN: "That number looks too short.", SW: "Namba hiyo ni fupi mno."},
	"ask_region":   {EN: "Which region or town should we send it to?", SW: "Tuitume mkoa au mji gani?"},
	"cancelled":    {EN: "Checkout cancelled. Your cart is still saved.", SW: "Malipo yamesitishwa. Kikapu chako bado kipo."},
	"pickup":       {EN: "🏬 Order *%s* is reserved for pickup.\n\n%s\n\n%s", SW: "🏬 Oda *%s* imehifadhiwa uichukue.\n\n%s\n\n%s"},

	// Location
	"ask_district":   {EN: "Select your district.", SW: "Chagua wilaya yako."},
	"districts":      {EN: "Districts", SW: "Wilaya"},
	"ask_ward":       {EN: "Select your ward in %s.", SW: "Chagua kata yako katika %s."},
	"wards":          {EN: "Wards", SW: "Kata"},
	"ask_street":     {EN: "Select your street in %s (page %d of %d).", SW: "Chagua mtaa wako katika %s (ukurasa %d kati ya %d)."},
	"streets":        {EN: "Streets", SW: "Mitaa"},
	"gps_hint":       {EN: "Not listed? Share your location 📍 instead.", SW: "Haupo? Tuma mahali ulipo 📍 badala yake."},
	"row_next":       {EN: "➡️ More streets", SW: "➡️ Mitaa zaidi"},
	"row_skip":       {EN: "Skip", SW: "Ruka"},
	"row_skip_desc":  {EN: "Use the ward estimate", SW: "Tumia makadirio ya kata"},
	"row_gps":        {EN: "📍 Share location", SW: "📍 Tuma mahali"},
	"row_gps_desc":   {EN: "Send a pin for a closer quote", SW: "Tuma pini kwa bei sahihi zaidi"},
	"ask_gps":        {EN: "Please share your location 📍 using the attachment button, or tap *Skip* to use an estimate.", SW: "Tafadhali tuma mahali ulipo 📍 kupitia kitufe cha kiambatisho, au bonyeza *Ruka* kutumia makadirio."},
	"invalid_choice": {EN: "Please choose one of the options.", SW: "Tafadhali chagua moja ya machaguo."},
	"type_name":      {EN: "More not listed. Type the name to pick one.", SW: "Zaidi hazijaorodheshwa. Andika jina kuchagua."},

	// Summary and payment
	"order":        {EN: "🧾 *Order %s*", SW: "🧾 *Oda %s*"},
	"deliver_to":   {EN: "Deliver to: %s", SW: "Peleka: %s"},
	"fee":          {EN: "Delivery (%s): %s", SW: "Usafirishaji (%s): %s"},
	"total":        {EN: "*Total: %s*", SW: "*Jumla: %s*"},
	"pay_header":   {EN: "💳 Payment", SW: "💳 Malipo"},
	"pay_label":    {EN: "Pay with", SW: "Lipa kwa"},
	"pay_prompt":   {EN: "Choose how you'd like to pay.", SW: "Chagua njia ya kulipa."},
	"pay_none":     {EN: "Our team will contact you with payment details.", SW: "Timu yetu itawasiliana nawe kuhusu malipo."},
	"proof":        {EN: "Once you've paid, reply with the payer's full name or send a photo of the receipt. Send *cancel* to go back to the menu.", SW: "Ukishalipa, jibu kwa jina kamili la aliyelipa au tuma picha ya risiti. Tuma *ghairi* kurudi kwenye menyu."},
	"proof_thanks": {EN: "🙏 Thank you! We've received your payment details for order *%s*. We'll confirm shortly.", SW: "🙏 Asante! Tumepokea taarifa za malipo ya oda *%s*. Tutathibitisha hivi punde."},

	// Tracking
	"ask_track":   {EN: "Type the name used on the order.", SW: "Andika jina lililotumika kwenye oda."},
	"track_none":  {EN: "No orders found for \"%s\".", SW: "Hakuna oda zilizopatikana kwa \"%s\"."},
	"track_found": {EN: "📦 Orders for \"%s\":", SW: "📦 Oda za \"%s\":"},

	"unsupported": {EN: "Sorry, I can only read text, buttons and locations.", SW: "Samahani, ninasoma maandishi, vitufe na mahali tu."},
}

var quoteLabels = map[models.ResolutionMethod]L{
	models.MethodExactStreet:       {EN: "street rate", SW: "bei ya mtaa"},
	models.MethodNearestCoordinate: {EN: "near %s", SW: "karibu na %s"},
	models.MethodWardAverage:       {EN: "ward estimate", SW: "makadirio ya kata"},
	models.MethodDerivedMinimum:    {EN: "estimate", SW: "makadirio"},
	models.MethodStraightLine:      {EN: "distance from shop", SW: "umbali kutoka dukani"},
	models.MethodFlatRate:          {EN: "flat rate", SW: "bei moja"},
	models.MethodNone:              {EN: "standard rate", SW: "bei ya kawaida"},
}

var statusLabels = map[string]L{
	models.OrderStatusAwaitingPayment: {EN: "awaiting payment", SW: "inasubiri malipo"},
	models.OrderStatusPickupPending:   {EN: "ready for pickup", SW: "tayari kuchukuliwa"},
	models.OrderStatusProofSubmitted:  {EN: "payment received", SW: "malipo yamepokelewa"},
}

// tr renders a message in the session language
func tr(lang models.Language, key string, args ...any) string {
	t, ok := texts[key]
	if !ok {
		log.Printf("missing text %q", key)
		return key
	}
	if len(args) == 0 {
		return t.For(lang)
	}
	return fmt.Sprintf(t.For(lang), args...)
}

// Keyword sets, matched on folded text
var (
	greetingWords = words("menu", "menyu", "hi", "hello", "hey", "start", "habari", "mambo", "hujambo", "salaam", "niaje")
	cancelWords   = words("cancel", "ghairi", "stop", "acha", "menu", "menyu")
	cartWords     = words("cart", "kikapu")
	checkoutWords = words("checkout", "lipia", "lipa")
	trackWords    = words("track", "fuatilia", "status")
	langWords     = words("lang", "language", "lugha", "kiswahili", "swahili", "english", "kiingereza")
	nextWords     = words("next", "more", "ijayo", "zaidi")
	skipWords     = words("skip", "ruka")
	insideWords   = words("1", "inside", "ndani")
	outsideWords  = words("2", "outside", "nje")
	deliveryWords = words("1", "delivery", "deliver", "niletewe", "leta")
	pickupWords   = words("2", "pickup", "pick up", "nitachukua", "chukua")
)

func words(ws ...string) map[string]bool {
	m := make(map[string]bool, len(ws))
	for _, w := range ws {
		m[w] = true
	}
	return m
}

func keyword(text string) string {
	return strings.Trim(location.Fold(text), ".!?")
}
