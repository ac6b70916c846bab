// Package report renders the structured evaluation result into a plain-text
// clinical report. It consumes the engine's output object only and never
// re-derives or re-validates clinical values.
package report

import (
	"fmt"
	"strings"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// Renderer formats evaluation results for display, printing, or mail
// delivery.
type Renderer struct {
	appName string
	version string
}

// NewRenderer creates a renderer stamped with the application identity.
func NewRenderer(appName, version string) *Renderer {
	return &Renderer{appName: appName, version: version}
}

// Render produces the sectioned text report for one result.
func (r *Renderer) Render(res *domain.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s - RHC Hemodynamics Report\n", r.appName)
	fmt.Fprintf(&b, "Version: %s | Case: %s\n", r.version, res.CaseID)
	fmt.Fprintf(&b, "Generated: %s\n\n", res.Timestamp.Format("2006-01-02 15:04"))

	if res.PatientLabel != "" {
		fmt.Fprintf(&b, "Patient: %s\n", res.PatientLabel)
	}
	if res.PatientID != "" {
		fmt.Fprintf(&b, "Patient ID: %s\n", res.PatientID)
	}
	if res.PatientLabel != "" || res.PatientID != "" {
		b.WriteString("\n")
	}

	for _, note := range res.Notes {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}
	if len(res.Notes) > 0 {
		b.WriteString("\n")
	}

	d := &res.Derived

	b.WriteString("Calculated flow / pump performance:\n")
	writeLine(&b, "CO (Fick)", d.COFick)
	writeLine(&b, "CO (thermodilution)", d.COThermodilution)
	fmt.Fprintf(&b, "  CO used for derived values: %s (%s)\n", d.CO.String(), d.COSource)
	if d.CODiscrepant {
		fmt.Fprintf(&b, "  WARNING: CO methods diverge by %.0f%%\n", d.CODiscrepancyPct.Value)
	}
	writeLine(&b, "CI", d.CI)
	writeLine(&b, "SV", d.SV)
	writeLine(&b, "SVI", d.SVI)
	writeLine(&b, "CPO", d.CPO)
	writeLine(&b, "CPI", d.CPI)
	b.WriteString("\n")

	b.WriteString("Pressures & pulmonary vascular indices:\n")
	fmt.Fprintf(&b, "  SvO2 used: %.1f%% (source: %s) | VO2: %.0f mL/min (%s)\n",
		d.MixedVenousSat, d.MixedVenousSource, d.VO2, d.VO2Source)
	writeLine(&b, "TPG", d.TPG)
	writeLine(&b, "DPG", d.DPG)
	writeLine(&b, "PVR", d.PVRWood)
	writeLine(&b, "PVR (dyn)", d.PVRDyn)
	writeLine(&b, "PVRI", d.PVRI)
	writeLine(&b, "PAPi", d.PAPi)
	writeLine(&b, "RAP/PCWP", d.RAPPCWPRatio)
	writeLine(&b, "PA compliance (SV/PP)", d.PACompliance)
	writeLine(&b, "RVSWI", d.RVSWI)
	b.WriteString("\n")

	b.WriteString("Shunt assessment (Qp/Qs):\n")
	if d.QpQs.Valid {
		fmt.Fprintf(&b, "  Qp/Qs: %.2f (%s)\n", d.QpQs.Value, d.QpQsNote)
	} else {
		fmt.Fprintf(&b, "  Qp/Qs: N/A (%s)\n", d.QpQs.Reason)
	}
	fmt.Fprintf(&b, "  %s\n\n", res.Classification.ShuntSummary)

	if d.MAP.Valid {
		b.WriteString("Systemic:\n")
		writeLine(&b, "MAP", d.MAP)
		writeLine(&b, "SVR", d.SVRWood)
		writeLine(&b, "SVR (dyn)", d.SVRDyn)
		writeLine(&b, "SVRI", d.SVRI)
		b.WriteString("\n")
	}

	b.WriteString("Final ESC/ERS PH classification (hemodynamics):\n")
	fmt.Fprintf(&b, "  %s\n", res.Classification.Summary)
	fmt.Fprintf(&b, "  PVR severity tier: %s\n\n", res.Classification.Severity)

	if len(res.Alerts) > 0 {
		b.WriteString("Advanced HF/Transplant alerts:\n")
		for _, a := range res.Alerts {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
		b.WriteString("\n")
	}

	b.WriteString("Treatment options (ESC/ERS-aligned, haemodynamic phenotype-based; high-level):\n")
	for _, stmt := range res.Recommendations.Statements {
		fmt.Fprintf(&b, "  - %s\n", stmt)
	}
	b.WriteString("\nNOTE: Treatment section is high-level and depends on PH group (1-5) + full diagnostic work-up. Final interpretation remains the responsibility of a qualified clinician.\n")

	return b.String()
}

// writeLine renders one labelled measurement with its range flag.
func writeLine(b *strings.Builder, label string, m domain.Measurement) {
	if !m.Valid {
		fmt.Fprintf(b, "  %s: N/A (%s)\n", label, m.Reason)
		return
	}
	if m.Flag != "" && m.Flag != domain.FLAG_NA {
		fmt.Fprintf(b, "  %s: %.2f %s [%s]\n", label, m.Value, m.Unit, m.Flag)
		return
	}
	fmt.Fprintf(b, "  %s: %.2f %s\n", label, m.Value, m.Unit)
}
