package airquality

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/air-quality-dashboard/internal/common"
)

// RejectReason explains why a raw record was dropped.
type RejectReason string

const (
	ReasonMalformedRecord  RejectReason = "malformed_record"
	ReasonMissingLatitude  RejectReason = "missing_latitude"
	ReasonInvalidLatitude  RejectReason = "invalid_latitude"
	ReasonMissingLongitude RejectReason = "missing_longitude"
	ReasonInvalidLongitude RejectReason = "invalid_longitude"
	ReasonInvalidAQI       RejectReason = "invalid_aqi"
)

// Rejection describes one dropped record.
type Rejection struct {
	Index  int          `json:"index"`
	UID    string       `json:"uid,omitempty"`
	Reason RejectReason `json:"reason"`
}

// Keys of one live_data element, matched case-sensitively.
const (
	keyUID         = "uid"
	keyStationName = "station_name"
	keyLatitude    = "latitude"
	keyLongitude   = "longitude"
	keyAQI         = "aqi"
	keyLastUpdated = "last_updated"
)

// rawRecord is one element of the live_data array with every value left as
// raw JSON so that loosely-typed values can be coerced individually.
type rawRecord map[string]json.RawMessage

// candidate is a coerced record awaiting validation. A nil pointer means the
// field was absent or null; NaN means it was present but not numeric.
type candidate struct {
	Latitude  *float64 `validate:"required,finite"`
	Longitude *float64 `validate:"required,finite"`
	AQI       *float64 `validate:"required,finite,gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	common.RegisterFinite(v)
	return v
}

// Normalize coerces raw API records into Stations. Records with a missing
// coordinate or a non-finite/negative AQI are dropped and reported as
// rejections; kept records preserve their input order.
func Normalize(records []json.RawMessage) ([]Station, []Rejection) {
	stations := make([]Station, 0, len(records))
	var rejections []Rejection

	for i, raw := range records {
		station, reason := normalizeRecord(raw)
		if reason != "" {
			rejections = append(rejections, Rejection{
				Index:  i,
				UID:    uidOf(raw),
				Reason: reason,
			})
			continue
		}
		stations = append(stations, station)
	}

	return stations, rejections
}

func normalizeRecord(raw json.RawMessage) (Station, RejectReason) {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return Station{}, ReasonMalformedRecord
	}

	c := candidate{
		Latitude:  common.CoerceFloat(rec[keyLatitude]),
		Longitude: common.CoerceFloat(rec[keyLongitude]),
		AQI:       common.CoerceFloat(rec[keyAQI]),
	}
	if err := validate.Struct(c); err != nil {
		return Station{}, rejectReason(err)
	}

	return Station{
		UID:         common.Text(rec[keyUID]),
		Name:        common.Text(rec[keyStationName]),
		Lat:         *c.Latitude,
		Lon:         *c.Longitude,
		AQI:         *c.AQI,
		LastUpdated: common.Text(rec[keyLastUpdated]),
	}, ""
}

// rejectReason maps the first failing field to a reason.
func rejectReason(err error) RejectReason {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ReasonMalformedRecord
	}

	fe := verrs[0]
	missing := fe.Tag() == "required"
	switch fe.Field() {
	case "Latitude":
		if missing {
			return ReasonMissingLatitude
		}
		return ReasonInvalidLatitude
	case "Longitude":
		if missing {
			return ReasonMissingLongitude
		}
		return ReasonInvalidLongitude
	default:
		return ReasonInvalidAQI
	}
}

func uidOf(raw json.RawMessage) string {
	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ""
	}
	return common.Text(rec[keyUID])
}
