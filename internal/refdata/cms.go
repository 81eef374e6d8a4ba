package refdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	httpclient "rcm-benchmark/internal/common/http"
)

// CMSClient queries the CMS provider-data "Hospital General Information"
// datastore.
type CMSClient struct {
	http      *httpclient.Client
	baseURL   string
	datasetID string
}

func NewCMSClient(client *httpclient.Client, baseURL, datasetID string) *CMSClient {
	return &CMSClient{
		http:      client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		datasetID: datasetID,
	}
}

type cmsQueryResponse struct {
	Count   int         `json:"count"`
	Results []cmsRecord `json:"results"`
}

type cmsRecord struct {
	HospitalName      string `json:"hospital_name"`
	ProviderID        string `json:"provider_id"`
	FacilityID        string `json:"facility_id"`
	State             string `json:"state"`
	City              string `json:"city"`
	HospitalType      string `json:"hospital_type"`
	HospitalOwnership string `json:"hospital_ownership"`
	EmergencyServices string `json:"emergency_services"`
	OverallRating     string `json:"hospital_overall_rating"`
}

// Lookup returns the first matching hospital.
func (c *CMSClient) Lookup(ctx context.Context, hospitalName string) (HospitalRecord, error) {
	q := url.Values{}
	q.Set("q", hospitalName)
	q.Set("limit", "10")
	endpoint := fmt.Sprintf("%s/datastore/query/%s?%s", c.baseURL, c.datasetID, q.Encode())

	var resp cmsQueryResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return HospitalRecord{}, fmt.Errorf("cms query: %w", err)
	}
	if len(resp.Results) == 0 {
		return HospitalRecord{Found: false}, nil
	}

	r := resp.Results[0]
	providerID := r.ProviderID
	if providerID == "" {
		providerID = r.FacilityID
	}
	return HospitalRecord{
		Found:             true,
		HospitalName:      r.HospitalName,
		ProviderID:        providerID,
		State:             r.State,
		City:              r.City,
		HospitalType:      r.HospitalType,
		HospitalOwnership: r.HospitalOwnership,
		EmergencyServices: r.EmergencyServices,
		OverallRating:     r.OverallRating,
	}, nil
}
