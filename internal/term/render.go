package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/libtak/pos-terminal/internal/dashboard"
	"github.com/libtak/pos-terminal/internal/pos"
)

// frameWidth is the rendered width of every screen.
const frameWidth = 64

// renderState carries everything the renderer needs beyond the session view.
type renderState struct {
	Input     string
	Selected  int
	Currency  string
	StoreName string
	Status    string
	Dashboard *dashboard.Snapshot
}

// renderFrame draws one full screen. The terminal is cleared and redrawn on
// every state change; at POS scale flicker-free diffing buys nothing.
func renderFrame(w io.Writer, v pos.View, st renderState) {
	fmt.Fprint(w, "\x1b[2J\x1b[H")

	title := st.StoreName
	if title == "" {
		title = "Caisse"
	}
	mode := "VENTE"
	if v.Mode == pos.ModePriceCheck {
		mode = "VÉRIF. PRIX"
	}
	fmt.Fprintln(w, rule("="))
	fmt.Fprintf(w, "%s%s\r\n", title, pad(title, "["+mode+"]"))
	fmt.Fprintln(w, rule("="))

	fmt.Fprintf(w, "Recherche: %s_\r\n", st.Input)
	fmt.Fprintln(w, rule("-"))

	switch {
	case v.SuccessShown:
		renderSuccess(w)
	case st.Dashboard != nil:
		renderDashboard(w, st)
	case v.PriceCheck != nil:
		renderPriceCheck(w, v, st)
	case v.PaymentOpen:
		renderPayment(w, v, st)
	default:
		renderSale(w, v, st)
	}

	if st.Status != "" {
		fmt.Fprintln(w, rule("-"))
		fmt.Fprintf(w, "! %s\r\n", st.Status)
	}
	fmt.Fprintln(w, rule("="))
	fmt.Fprint(w, "Tab:mode  ^P:paiement  ^D:tableau  ^K:vider  Échap:annuler  ^C:quitter\r\n")
}

func renderDashboard(w io.Writer, st renderState) {
	d := st.Dashboard
	fmt.Fprint(w, "TABLEAU DE BORD\r\n")

	if d.StatsErr != nil {
		fmt.Fprintf(w, "  Chiffres indisponibles: %s\r\n", d.StatsErr)
	} else {
		fmt.Fprintf(w, "  CA du jour: %s %s   Bénéfice: %s %s\r\n",
			d.Stats.TodayRevenue.StringFixed(2), st.Currency,
			d.Stats.TodayProfit.StringFixed(2), st.Currency)
		fmt.Fprintf(w, "  CA du mois: %s %s   Produits: %d\r\n",
			d.Stats.MonthRevenue.StringFixed(2), st.Currency,
			d.Stats.TotalProducts)
	}

	fmt.Fprintln(w, rule("-"))
	switch {
	case d.LowStockErr != nil:
		fmt.Fprintf(w, "  Alertes stock indisponibles: %s\r\n", d.LowStockErr)
	case len(d.LowStock) == 0:
		fmt.Fprint(w, "  Aucun produit sous le seuil de stock.\r\n")
	default:
		fmt.Fprintf(w, "  Stock bas (%d):\r\n", len(d.LowStock))
		for _, p := range d.LowStock {
			fmt.Fprintf(w, "    %s — %d restant(s), seuil %d\r\n",
				trim(p.Name, 36), p.Stock, p.MinStock)
		}
	}

	fmt.Fprintln(w, rule("-"))
	if d.RecentSalesErr != nil {
		fmt.Fprintf(w, "  Dernières ventes indisponibles: %s\r\n", d.RecentSalesErr)
	} else {
		fmt.Fprintf(w, "  Dernières ventes (%d):\r\n", len(d.RecentSales))
		for _, s := range d.RecentSales {
			fmt.Fprintf(w, "    N° %08d  %s %s\r\n", s.ID, s.Total.StringFixed(2), st.Currency)
		}
	}
	fmt.Fprint(w, "Échap: fermer\r\n")
}

func renderSale(w io.Writer, v pos.View, st renderState) {
	if len(v.Results) > 0 {
		for i, p := range v.Results {
			marker := "  "
			if i == st.Selected {
				marker = "> "
			}
			stock := fmt.Sprintf("stock %d", p.Stock)
			if !p.InStock() {
				stock = "épuisé"
			}
			left := fmt.Sprintf("%s%s", marker, trim(p.Name, 34))
			right := fmt.Sprintf("%s %s  %s", p.PriceTTC.StringFixed(2), st.Currency, stock)
			fmt.Fprintf(w, "%s%s\r\n", left, pad(left, right))
		}
		fmt.Fprintln(w, rule("-"))
	}

	if len(v.Lines) == 0 {
		fmt.Fprint(w, "Panier vide — scannez un article ou cherchez-le.\r\n")
	}
	for _, l := range v.Lines {
		left := fmt.Sprintf("%dx %s", l.Quantity, trim(l.Product.Name, 40))
		right := fmt.Sprintf("%s %s", l.Total().StringFixed(2), st.Currency)
		fmt.Fprintf(w, "%s%s\r\n", left, pad(left, right))
	}

	fmt.Fprintln(w, rule("-"))
	left := fmt.Sprintf("%d article(s)", v.ItemCount)
	right := fmt.Sprintf("TOTAL %s %s", v.Total.StringFixed(2), st.Currency)
	fmt.Fprintf(w, "%s%s\r\n", left, pad(left, right))
}

func renderPayment(w io.Writer, v pos.View, st renderState) {
	fmt.Fprintf(w, "PAIEMENT — total %s %s\r\n", v.Total.StringFixed(2), st.Currency)
	fmt.Fprintf(w, "Montant reçu: %s_\r\n", st.Input)
	if v.Tendered.Sign() > 0 {
		label := "À rendre"
		change := v.Change
		if change.IsNegative() {
			label = "Manque"
			change = change.Neg()
		}
		fmt.Fprintf(w, "%s: %s %s\r\n", label, change.StringFixed(2), st.Currency)
	}
	if v.InFlight {
		fmt.Fprint(w, "Envoi en cours...\r\n")
	} else {
		fmt.Fprint(w, "Entrée: encaisser   Échap: retour\r\n")
	}
}

func renderPriceCheck(w io.Writer, v pos.View, st renderState) {
	p := v.PriceCheck
	fmt.Fprintf(w, "PRIX — %s\r\n", p.Name)
	fmt.Fprintf(w, "  %s %s", p.PriceTTC.StringFixed(2), st.Currency)
	if p.InStock() {
		fmt.Fprintf(w, "   (stock: %d)", p.Stock)
	} else {
		fmt.Fprint(w, "   (épuisé)")
	}
	fmt.Fprint(w, "\r\nÉchap: fermer\r\n")
}

func renderSuccess(w io.Writer) {
	fmt.Fprint(w, "\r\n   ✓ VENTE ENREGISTRÉE\r\n\r\n")
}

// renderFailure is the last-resort screen shown when the event loop panics.
func renderFailure(w io.Writer) {
	fmt.Fprint(w, "\x1b[2J\x1b[H")
	fmt.Fprintln(w, rule("="))
	fmt.Fprint(w, "Une erreur inattendue s'est produite.\r\n")
	fmt.Fprint(w, "R: recharger l'écran    D: se déconnecter\r\n")
	fmt.Fprintln(w, rule("="))
}

func rule(ch string) string {
	return strings.Repeat(ch, frameWidth) + "\r"
}

// pad returns the spaces that right-align right after left on one line.
func pad(left, right string) string {
	gap := frameWidth - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", gap) + right
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
