package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "rcm-benchmark/internal/common/errors"
	"rcm-benchmark/internal/common/validation"
	"rcm-benchmark/internal/delivery"
	"rcm-benchmark/internal/report"
)

// ReportRequest is accepted as a form post or as JSON.
type ReportRequest struct {
	HospitalName    string `form:"hospital_name" json:"hospital_name"`
	HospitalBeds    int    `form:"hospital_beds" json:"hospital_beds"`
	State           string `form:"state" json:"state"`
	RecipientName   string `form:"recipient_name" json:"recipient_name"`
	RecipientEmail  string `form:"recipient_email" json:"recipient_email"`
	OriginalSubject string `form:"original_subject" json:"original_subject"`
}

var (
	reportValidator   = validation.MustValidator(validation.ReportRequestSchema)
	deliveryValidator = validation.MustValidator(validation.DeliveryRequestSchema)
)

// document leaves out empty optional fields so "required" checks see them as
// missing.
func (r ReportRequest) document() map[string]interface{} {
	doc := map[string]interface{}{
		"hospital_name": strings.TrimSpace(r.HospitalName),
		"hospital_beds": r.HospitalBeds,
	}
	optional := map[string]string{
		"state":            strings.TrimSpace(r.State),
		"recipient_name":   strings.TrimSpace(r.RecipientName),
		"recipient_email":  strings.TrimSpace(r.RecipientEmail),
		"original_subject": strings.TrimSpace(r.OriginalSubject),
	}
	for k, v := range optional {
		if v != "" {
			doc[k] = v
		}
	}
	return doc
}

func (r ReportRequest) toServiceRequest(origin string) report.Request {
	return report.Request{
		HospitalName: strings.TrimSpace(r.HospitalName),
		HospitalBeds: r.HospitalBeds,
		State:        strings.TrimSpace(r.State),
		Recipient: delivery.Recipient{
			Name:            strings.TrimSpace(r.RecipientName),
			Email:           strings.TrimSpace(r.RecipientEmail),
			OriginalSubject: strings.TrimSpace(r.OriginalSubject),
		},
		Origin: origin,
	}
}

// bindReportRequest binds the body and checks it against v.
func bindReportRequest(c *gin.Context, v *validation.Validator) (*ReportRequest, error) {
	var req ReportRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, apperrors.NewInvalidInputError("body", "invalid request body: "+err.Error())
	}

	result, err := v.Validate(req.document())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.FirstField(), strings.Join(result.GetErrorMessages(), "; "))
	}
	return &req, nil
}
