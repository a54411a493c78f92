package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"FareSentinel/internal/calculator"
	"FareSentinel/internal/model"
	"FareSentinel/internal/money"
	"FareSentinel/internal/snapshot"
)

// ReportOptions controls how a run report is rendered.
type ReportOptions struct {
	Currency     string
	Program      string // loyalty program display name
	CarrierNames map[string]string
	DealCashPP   float64
	DealPointsPP int
	Booster      *calculator.BoosterTable
	Location     *time.Location
	Now          time.Time
}

const (
	labelWidth = 20
	rule       = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	thinRule   = "──────────────────────────────────────────────────"
	dealMark   = "  🔥 GREAT DEAL"
)

func row(label, value string) string {
	return fmt.Sprintf("%-*s%s", labelWidth, label, value)
}

func sectionHeader(title string) string {
	return rule + "\n" + title + "\n" + rule
}

func (o ReportOptions) carrierLabel(codes []string) string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		if n, ok := o.CarrierNames[c]; ok {
			names = append(names, n)
		} else {
			names = append(names, c)
		}
	}
	return strings.Join(names, ", ")
}

func star(preferred bool) string {
	if preferred {
		return "⭐ "
	}
	return "   "
}

func fmtDuration(d time.Duration) string {
	if d <= 0 {
		return "—"
	}
	mins := int(d.Minutes())
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func fmtClock(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2 Jan 15:04")
}

func pax(n int) string {
	if n == 1 {
		return "1 pax"
	}
	return fmt.Sprintf("%d pax", n)
}

// FormatCashOffer renders one cash fare block.
func FormatCashOffer(o model.CashOffer, party int, opts ReportOptions) string {
	deal := ""
	if o.Cabin == model.CabinBusiness && opts.DealCashPP > 0 && o.PricePP < opts.DealCashPP {
		deal = dealMark
	}
	stops := "non-stop"
	if o.Stops > 0 {
		stops = fmt.Sprintf("%s · %d stop", o.Via, o.Stops)
		if o.Stops > 1 {
			stops += "s"
		}
	}

	var b strings.Builder
	b.WriteString(star(o.IsPreferred) + opts.carrierLabel(o.CarrierCodes) + "\n```")
	b.WriteString("\n" + row("Flights", strings.Join(o.Flights, " · ")))
	b.WriteString("\n" + row("Via / Stops", stops))
	b.WriteString("\n" + row("Departs", fmtClock(o.DepartAt)))
	b.WriteString("\n" + row("Arrives", fmtClock(o.ArriveAt)))
	b.WriteString("\n" + row("Layover", fmtDuration(o.Layover)))
	b.WriteString("\n" + row("Total time", fmtDuration(o.Duration)))
	b.WriteString("\n" + row(fmt.Sprintf("Cash (%s)", pax(party)),
		fmt.Sprintf("%s  (~$%s pp)", money.Format(opts.Currency, o.TotalPrice), money.Whole(o.PricePP))) + deal)
	b.WriteString("```")
	return b.String()
}

// FormatRewardOffer renders one reward seat block.
func FormatRewardOffer(o model.RewardOffer, opts ReportOptions, showDeal bool) string {
	deal := ""
	if showDeal && o.Cabin == model.CabinBusiness && opts.DealPointsPP > 0 && o.PointsPP < opts.DealPointsPP {
		deal = dealMark
	}

	var b strings.Builder
	b.WriteString(star(o.IsPreferred) + opts.carrierLabel(o.CarrierCodes) + "\n```")
	b.WriteString("\n" + row("Flights", strings.Join(o.Flights, " · ")))
	b.WriteString("\n" + row("Seats avail", fmt.Sprint(o.SeatsAvailable)))
	b.WriteString("\n" + row("Points (pp)", fmt.Sprintf("%s  (%s total)", money.Points(o.PointsPP), money.Points(o.TotalPoints))) + deal)
	b.WriteString("\n" + row("Points + taxes", fmt.Sprintf("%s pts + %s", money.Points(o.TotalPoints), money.Format(opts.Currency, o.TotalTaxes))))
	b.WriteString("\n" + row("Buy pts cost", fmt.Sprintf("%s  (%s pts)", money.Format(opts.Currency, o.PurchaseCost), money.Points(o.PointsBought))))
	b.WriteString("\n" + row("All-in (buy pts)", money.Format(opts.Currency, o.AllInCost)))
	b.WriteString("```")
	return b.String()
}

// FormatPriceInsight renders the percentile line for a route.
func FormatPriceInsight(route model.Route, cabin model.Cabin, pc model.PriceContext) string {
	marker := ""
	switch pc.Rating {
	case model.RatingFavorable:
		marker = " 🟢"
	case model.RatingNeutral:
		marker = " 🟡"
	case model.RatingUnfavorable:
		marker = " 🔴"
	}
	desc := pc.String()
	if !pc.Available {
		desc = "(" + calculator.UnavailableLabel + ")"
		marker = ""
	}
	return fmt.Sprintf("_Price insight (%s %s): %s%s_", route, cabin.Title(), desc, marker)
}

// FormatChanges renders diff entries as bullet lines.
func FormatChanges(entries []snapshot.DiffEntry, currency string) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		marker := "•"
		switch e.Direction {
		case snapshot.DirectionImproved, snapshot.DirectionNew:
			marker = "🟢"
		case snapshot.DirectionWorsened, snapshot.DirectionGone:
			marker = "🔴"
		}
		if e.IsSentinel() {
			marker = "•"
		}
		lines = append(lines, fmt.Sprintf("  %s %s", marker, e.Render(currency)))
	}
	return lines
}

// FormatReport renders the full run report.
func FormatReport(set *model.SelectionSet, diff []snapshot.DiffEntry, opts ReportOptions) string {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Booster == nil {
		opts.Booster = calculator.DefaultBoosterTable()
	}
	trip := set.Trip
	through := set.Routes[model.SegmentThrough]
	first := set.Routes[model.SegmentFirstLeg]
	priority := set.Routes[model.SegmentPriorityLeg]

	var lines []string
	add := func(s ...string) { lines = append(lines, s...) }

	travel := trip.Date
	if d, err := time.Parse("2006-01-02", trip.Date); err == nil {
		travel = d.Format("2 Jan 2006")
	}
	adults := fmt.Sprintf("%d adults", trip.Passengers)
	if trip.Passengers == 1 {
		adults = "1 adult"
	}
	add(fmt.Sprintf("✈️ *%s → %s  |  %s  |  %s  |  %s*",
		trip.Origin, trip.Destination, travel, adults,
		opts.Now.In(opts.Location).Format("2 Jan 2006 03:04 PM MST")))

	add("\n*📋 CHANGES SINCE LAST RUN*")
	add(FormatChanges(diff, opts.Currency)...)

	// Business through
	add("\n" + sectionHeader("BUSINESS — THROUGH BOOKING"))
	bizCash := set.CashFor(model.SegmentThrough, model.CabinBusiness)
	lines = append(lines, cashBlock(set, bizCash, model.SegmentThrough, through, model.CabinBusiness, opts, "_No cash fares found_")...)
	bizPts := set.RewardFor(model.SegmentThrough, model.CabinBusiness)
	if bizPts.Empty() {
		add(fmt.Sprintf("_No %s reward seats (through itinerary)_", opts.Program))
	} else {
		add(fmt.Sprintf("*%s reward seats:*", opts.Program))
		for _, o := range bizPts.Offers() {
			add(FormatRewardOffer(o, opts, true))
		}
	}

	// Business self-transfer
	if trip.Hub != "" {
		add("\n" + sectionHeader("BUSINESS — SELF-TRANSFER  _(book legs separately)_"))
		firstCash := set.CashFor(model.SegmentFirstLeg, model.CabinBusiness)
		firstPts := set.RewardFor(model.SegmentFirstLeg, model.CabinBusiness)
		legCash := set.CashFor(model.SegmentPriorityLeg, model.CabinBusiness)
		legPts := set.RewardFor(model.SegmentPriorityLeg, model.CabinBusiness)

		add(fmt.Sprintf("*Leg 1: %s → %s*", first.Origin, first.Destination))
		lines = append(lines, cashBlock(set, firstCash, model.SegmentFirstLeg, first, model.CabinBusiness, opts, "_No cash fares found_")...)
		lines = append(lines, rewardBlock(firstPts, opts, fmt.Sprintf("_No %s reward seats_", opts.Program))...)

		add(fmt.Sprintf("*Leg 2: %s → %s  ⚑ priority leg*", priority.Origin, priority.Destination))
		lines = append(lines, cashBlock(set, legCash, model.SegmentPriorityLeg, priority, model.CabinBusiness, opts, "_No cash fares found_")...)
		lines = append(lines, rewardBlock(legPts, opts, fmt.Sprintf("_No %s reward seats_", opts.Program))...)

		lines = append(lines, combinedBlock(firstCash, legCash, firstPts, legPts, trip.Passengers, opts)...)
	}

	// Economy through
	add("\n" + sectionHeader("ECONOMY — THROUGH BOOKING"))
	ecoCash := set.CashFor(model.SegmentThrough, model.CabinEconomy)
	lines = append(lines, cashBlock(set, ecoCash, model.SegmentThrough, through, model.CabinEconomy, opts, "_No cash fares found_")...)
	ecoPts := set.RewardFor(model.SegmentThrough, model.CabinEconomy)
	if ecoPts.Empty() {
		add(fmt.Sprintf("_No %s reward seats_", opts.Program))
	} else {
		add(fmt.Sprintf("*%s reward seats:*", opts.Program))
		for _, o := range ecoPts.Offers() {
			add(FormatRewardOffer(o, opts, false))
		}
	}

	add("\n" + thinRule)
	add("*📊 ASSESSMENT*")
	add(assessment(set, opts)...)
	add(thinRule)

	return strings.Join(lines, "\n")
}

func cashBlock(set *model.SelectionSet, sel model.Selection[model.CashOffer], seg model.Segment, route model.Route, cabin model.Cabin, opts ReportOptions, empty string) []string {
	if sel.Empty() {
		return []string{empty}
	}
	var out []string
	for _, o := range sel.Offers() {
		out = append(out, FormatCashOffer(o, set.Trip.Passengers, opts))
	}
	if pc, ok := set.ContextFor(seg, cabin); ok && sel.Preferred != nil {
		out = append(out, FormatPriceInsight(route, cabin, pc))
	}
	return out
}

func rewardBlock(sel model.Selection[model.RewardOffer], opts ReportOptions, empty string) []string {
	if sel.Empty() {
		return []string{empty}
	}
	var out []string
	for _, o := range sel.Offers() {
		out = append(out, FormatRewardOffer(o, opts, true))
	}
	return out
}

// combinedBlock totals both self-transfer legs, preferring the preferred
// carrier on each leg. Booster cost is priced over the combined points.
func combinedBlock(firstCash, legCash model.Selection[model.CashOffer], firstPts, legPts model.Selection[model.RewardOffer], party int, opts ReportOptions) []string {
	haveFirst := !firstCash.Empty() || !firstPts.Empty()
	haveLeg := !legCash.Empty() || !legPts.Empty()
	if !haveFirst || !haveLeg {
		return nil
	}
	out := []string{"*Combined self-transfer:*"}
	if a, b := firstCash.PreferredOrFirst(), legCash.PreferredOrFirst(); a != nil && b != nil {
		total := money.Sum(a.TotalPrice, b.TotalPrice)
		out = append(out, "```\n"+row(fmt.Sprintf("Cash (%s)", pax(party)), money.Format(opts.Currency, total))+"\n```")
	}
	if a, b := firstPts.PreferredOrFirst(), legPts.PreferredOrFirst(); a != nil && b != nil {
		points := a.TotalPoints + b.TotalPoints
		taxes := money.Sum(a.TotalTaxes, b.TotalTaxes)
		allIn := "n/a"
		if _, price, err := opts.Booster.Cost(points); err == nil {
			allIn = money.Format(opts.Currency, money.Sum(float64(price), taxes))
		}
		out = append(out, "```"+
			"\n"+row("Points + taxes", fmt.Sprintf("%s pts + %s", money.Points(points), money.Format(opts.Currency, taxes)))+
			"\n"+row("All-in (buy pts)", allIn)+
			"\n```")
	}
	return out
}

func assessment(set *model.SelectionSet, opts ReportOptions) []string {
	var out []string

	var pts []model.RewardOffer
	pts = append(pts, set.RewardFor(model.SegmentThrough, model.CabinBusiness).Offers()...)
	pts = append(pts, set.RewardFor(model.SegmentPriorityLeg, model.CabinBusiness).Offers()...)
	if len(pts) == 0 {
		out = append(out, "   Business reward seats: none found 🔴")
	} else {
		best := pts[0].PointsPP
		for _, o := range pts[1:] {
			best = min(best, o.PointsPP)
		}
		out = append(out, fmt.Sprintf("   Best Business points: %s pp %s", money.Points(best), dealLight(float64(best) < float64(opts.DealPointsPP))))
	}

	cash := set.CashFor(model.SegmentThrough, model.CabinBusiness).Offers()
	if len(cash) == 0 {
		out = append(out, "   Business cash fares: none found 🔴")
	} else {
		best := cash[0].PricePP
		for _, o := range cash[1:] {
			best = math.Min(best, o.PricePP)
		}
		out = append(out, fmt.Sprintf("   Best Business cash: %s pp %s", money.Format(opts.Currency, best), dealLight(best < opts.DealCashPP)))
	}

	if hint := bookingHint(set.Trip.Date, opts.Now); hint != "" {
		out = append(out, "   "+hint)
	}
	return out
}

func dealLight(deal bool) string {
	if deal {
		return "🟢"
	}
	return "🟡"
}

// bookingHint reports how far out the trip is.
func bookingHint(date string, now time.Time) string {
	travel, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	months := travel.Sub(now).Hours() / 24 / 30.44
	rounded := int(math.Round(months))
	switch {
	case months > 6:
		window := travel.AddDate(0, -4, 0).Format("Jan") + "/" + travel.AddDate(0, -3, 0).Format("Jan 2006")
		return fmt.Sprintf("💡 %d months out — prime booking window opens %s", rounded, window)
	case months > 3:
		return fmt.Sprintf("⚡ %d months out — act quickly on good availability", rounded)
	case months >= 0:
		return fmt.Sprintf("⚠️ Only %d months out — book urgently if suitable", rounded)
	default:
		return "⚠️ Travel date has passed"
	}
}

// FormatStatus renders the stored snapshot for the /status command.
func FormatStatus(s *snapshot.Snapshot, currency string) string {
	if s == nil || s.Len() == 0 {
		return "No tracker data yet. Send /check to run now."
	}
	var b strings.Builder
	b.WriteString("📌 *Last tracked values*\n")
	for _, m := range snapshot.Catalog {
		v, ok := s.Get(m.Name)
		if !ok {
			continue
		}
		var val string
		switch m.Unit {
		case snapshot.UnitCurrency:
			val = money.Format(currency, v)
		case snapshot.UnitPoints:
			val = money.Points(int(v)) + " pts"
		default:
			val = fmt.Sprintf("%.0f seats", v)
		}
		b.WriteString(fmt.Sprintf("  • %s: %s\n", m.Label, val))
	}
	return strings.TrimRight(b.String(), "\n")
}
