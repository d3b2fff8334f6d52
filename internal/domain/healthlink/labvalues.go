package healthlink

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Interpretation thresholds. A value strictly greater than the threshold
// falls into the higher band.
var (
	glucoseDiabetes   = decimal.RequireFromString("11.1")
	glucoseImpaired   = decimal.RequireFromString("7.8")
	hba1cDiabetes     = decimal.RequireFromString("6.5")
	hba1cPreDiabetes  = decimal.RequireFromString("6.0")
	inrHigh           = decimal.RequireFromString("3.0")
	inrTherapeutic    = decimal.RequireFromString("1.5")
	crpElevated       = decimal.RequireFromString("10")
	troponinElevated  = decimal.RequireFromString("0.04")
	psaElevated       = decimal.RequireFromString("4.0")
	tshRaised         = decimal.RequireFromString("4.0")
	cholesterolRaised = decimal.RequireFromString("5.0")

	// IFCC conversion from DCCT percent to mmol/mol.
	hba1cOffset = decimal.RequireFromString("2.15")
	hba1cFactor = decimal.RequireFromString("10.929")
)

const (
	esrRaised = 20

	// Reference ranges embedded in single-analyte results. Glucose carries
	// none because its range depends on whether the sample was fasting.
	crpRange      = "ref <10"
	esrRange      = "ref 0-20"
	troponinRange = "ref <0.04"
	tshRange      = "ref 0.40-4.00"
	psaRange      = "ref <4.0"
	inrRange      = "ref 0.8-1.2"
	hba1cRange    = "ref <6.0%"

	// fbcAbnormalPercent is the chance of an out-of-range blood count.
	fbcAbnormalPercent = 15
)

var (
	urinalysisProtein = []string{"NEGATIVE", "TRACE", "+", "++"}
	urinalysisOther   = []string{"NEGATIVE", "TRACE", "+"}
)

const mhhResult = "Hepatitis B Surface Antigen: NEGATIVE\n" +
	"Hepatitis C Antibody: NEGATIVE\n" +
	"HIV 1&2 Antibody: NEGATIVE"

// labValueGenerator produces the local result text for lab tests.
type labValueGenerator struct {
	src ValueSource
}

// decimalBetween draws a value with the given number of decimal places
// between min and max, both expressed in units of 10^-places.
func (g labValueGenerator) decimalBetween(minUnits, maxUnits int, places int32) decimal.Decimal {
	return decimal.New(int64(g.src.IntRange(minUnits, maxUnits)), -places)
}

// Generate returns the result text for the test code.
func (g labValueGenerator) Generate(t LabTest) string {
	switch t.Code {
	case "FBC":
		return g.fullBloodCount()
	case "U&E":
		return g.ureaElectrolytes()
	case "LFT":
		return fmt.Sprintf("ALT: %dU/L, AST: %dU/L, ALP: %dU/L, Bilirubin: %dumol/L",
			g.src.IntRange(10, 40), g.src.IntRange(10, 40), g.src.IntRange(30, 120), g.src.IntRange(5, 25))
	case "TFT":
		return fmt.Sprintf("TSH: %smU/L, T4: %dpmol/L",
			g.decimalBetween(50, 450, 2).StringFixed(2), g.src.IntRange(9, 25))
	case "LIPIDS":
		return g.lipids()
	case "HBA1C":
		return g.hba1c()
	case "INR":
		return g.inr()
	case "CRP":
		crp := g.decimalBetween(5, 2000, 1)
		return fmt.Sprintf("%s mg/L (%s) (%s)", crp.StringFixed(1), crpRange, band(crp, crpElevated, "Elevated - inflammation/infection", "Normal"))
	case "ESR":
		esr := g.src.IntRange(2, 30)
		interp := "Normal"
		if esr > esrRaised {
			interp = "Raised"
		}
		return fmt.Sprintf("%d mm/hr (%s) (%s)", esr, esrRange, interp)
	case "TROPONIN":
		trop := g.decimalBetween(1, 50000, 3)
		return fmt.Sprintf("%s ng/mL (%s) (%s)", trop.StringFixed(3), troponinRange, band(trop, troponinElevated, "ELEVATED - possible MI", "Normal"))
	case "MHH":
		return mhhResult
	case "GLUCOSE":
		return g.glucose()
	case "TSH":
		tsh := g.decimalBetween(40, 500, 2)
		return fmt.Sprintf("%s mU/L (%s) (%s)", tsh.StringFixed(2), tshRange, band(tsh, tshRaised, "Raised - possible hypothyroidism", "Normal"))
	case "PSA":
		psa := g.decimalBetween(10, 1000, 2)
		return fmt.Sprintf("%s ng/mL (%s) (%s)", psa.StringFixed(2), psaRange, band(psa, psaElevated, "Elevated - further investigation needed", "Normal"))
	case "URINALYSIS":
		return fmt.Sprintf("Protein: %s, Glucose: %s, Blood: %s, Leucocytes: %s",
			pick(g.src, urinalysisProtein), pick(g.src, urinalysisOther), pick(g.src, urinalysisOther), pick(g.src, urinalysisOther))
	default:
		return fmt.Sprintf("Result: %s within normal limits", t.Name)
	}
}

func band(v, threshold decimal.Decimal, above, otherwise string) string {
	if v.GreaterThan(threshold) {
		return above
	}
	return otherwise
}

func (g labValueGenerator) fullBloodCount() string {
	var wbc, hgb int
	status := ""
	if g.src.IntRange(0, 99) < fbcAbnormalPercent {
		if g.src.IntRange(0, 1) == 0 {
			wbc = g.src.IntRange(2, 3)
		} else {
			wbc = g.src.IntRange(12, 18)
		}
		if g.src.IntRange(0, 1) == 0 {
			hgb = g.src.IntRange(80, 110)
		} else {
			hgb = g.src.IntRange(190, 220)
		}
		status = " (ABNORMAL)"
	} else {
		wbc = g.src.IntRange(4, 11)
		hgb = g.src.IntRange(120, 180)
	}
	rbc := g.decimalBetween(400, 600, 2)
	hct := g.decimalBetween(350, 500, 1)
	return fmt.Sprintf("WBC: %dx10^9/L, RBC: %sx10^12/L, Hgb: %dg/L, Hct: %s%%%s",
		wbc, rbc.StringFixed(2), hgb, hct.StringFixed(1), status)
}

func (g labValueGenerator) ureaElectrolytes() string {
	return fmt.Sprintf("Sodium: %dmmol/L, Potassium: %smmol/L, Urea: %smmol/L, Creatinine: %dumol/L",
		g.src.IntRange(135, 145),
		g.decimalBetween(35, 50, 1).StringFixed(1),
		g.decimalBetween(25, 80, 1).StringFixed(1),
		g.src.IntRange(60, 120))
}

func (g labValueGenerator) lipids() string {
	total := g.decimalBetween(30, 75, 1)
	ldl := g.decimalBetween(15, 50, 1)
	hdl := g.decimalBetween(8, 22, 1)
	tg := g.decimalBetween(5, 35, 1)
	return fmt.Sprintf("Cholesterol: %smmol/L, LDL: %smmol/L, HDL: %smmol/L, Triglycerides: %smmol/L (%s)",
		total.StringFixed(1), ldl.StringFixed(1), hdl.StringFixed(1), tg.StringFixed(1),
		band(total, cholesterolRaised, "Raised cholesterol", "Desirable"))
}

func (g labValueGenerator) hba1c() string {
	pct := g.decimalBetween(40, 120, 1)
	mmol := pct.Sub(hba1cOffset).Mul(hba1cFactor).Round(0).IntPart()

	interp := "Normal"
	switch {
	case pct.GreaterThan(hba1cDiabetes):
		interp = "Diabetes mellitus"
	case pct.GreaterThan(hba1cPreDiabetes):
		interp = "Pre-diabetes"
	}
	return fmt.Sprintf("%s%% (%d mmol/mol) (%s) (%s)", pct.StringFixed(1), mmol, hba1cRange, interp)
}

func (g labValueGenerator) inr() string {
	inr := g.decimalBetween(8, 45, 1)
	interp := "Normal/subtherapeutic"
	switch {
	case inr.GreaterThan(inrHigh):
		interp = "High - bleeding risk"
	case inr.GreaterThan(inrTherapeutic):
		interp = "Therapeutic anticoagulation"
	}
	return fmt.Sprintf("%s (%s) (%s)", inr.StringFixed(1), inrRange, interp)
}

func (g labValueGenerator) glucose() string {
	glu := g.decimalBetween(35, 150, 1)
	interp := "Normal"
	switch {
	case glu.GreaterThan(glucoseDiabetes):
		interp = "Diabetes range"
	case glu.GreaterThan(glucoseImpaired):
		interp = "Impaired glucose tolerance"
	}
	return fmt.Sprintf("%s mmol/L (%s)", glu.StringFixed(1), interp)
}
