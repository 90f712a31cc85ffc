package utils

import (
	"bytes"
	"complaint-portal/models"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// ComplaintPDF renders the "Harassment Complaint Report" for one complaint.
// Complainant contact details are printed only when the view carries them.
func ComplaintPDF(view *models.ComplaintView) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Harassment Complaint Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	line := func(format string, args ...any) {
		pdf.MultiCell(0, 7, tr(fmt.Sprintf(format, args...)), "", "L", false)
	}
	section := func(title string) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "BU", 16)
		pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
	}

	c := view.Complaint
	pdf.SetFont("Helvetica", "", 14)
	line("Complaint ID: %s", c.ID.Hex())
	line("Title: %s", c.Title)
	line("Status: %s", c.Status)

	section("Complainant Details")
	switch {
	case c.IsAnonymous || view.UserInfo == nil:
		line("Name: Anonymous")
	default:
		line("Name: %s", view.UserInfo.Name)
	}
	if view.UserInfo != nil {
		line("Email: %s", view.UserInfo.Email)
		line("Phone: %s", view.UserInfo.Phone)
	}

	section("Incident Details")
	line("Perpetrator Name: %s", c.PerpetratorName)
	line("Perpetrator Details: %s", c.PerpetratorDetails)
	line("Incident Date: %s", c.IncidentDate.Format("Mon Jan 02 2006"))
	line("Incident Location: %s", c.IncidentLocation)

	section("Description")
	line("%s", c.Description)

	if view.HRInfo != nil {
		section("Assigned HR/NGO")
		line("Organization: %s", view.HRInfo.Organization)
		line("Department: %s", view.HRInfo.Department)
		line("Contact Person: %s", view.HRInfo.Position)
		line("NGO: %s", yesNo(view.HRInfo.IsNGO))
	}

	if c.ReportedToNGO {
		section("NGO Report")
		if c.NGOReportDate != nil {
			line("Reported: %s", c.NGOReportDate.Format("Mon Jan 02 2006"))
		}
		line("%s", c.NGOReportDetails)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
