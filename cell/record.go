package cell

// Signal carries the RAT-specific measurement bag of one record. Every field is
// optional: nil means the modem did not report it, never a zero reading.
type Signal struct {
	// LTE
	RSRP *float64 `json:"rsrp,omitempty"` // dBm
	RSRQ *float64 `json:"rsrq,omitempty"` // dB
	RSSI *float64 `json:"rssi,omitempty"` // dBm, also GSM
	SINR *float64 `json:"sinr,omitempty"` // dB (RSSNR)
	CQI  *float64 `json:"cqi,omitempty"`
	// NR
	SSRSRP *float64 `json:"ss_rsrp,omitempty"`
	SSRSRQ *float64 `json:"ss_rsrq,omitempty"`
	SSSINR *float64 `json:"ss_sinr,omitempty"`
	// WCDMA
	RSCP *float64 `json:"rscp,omitempty"`
	EcNo *float64 `json:"ecno,omitempty"`
}

// RawRecord is one detected cell from one scan, exactly as acquired. Records
// are immutable once decoded and carry no identity across scans.
type RawRecord struct {
	RAT            RAT    `json:"rat"`
	TypeTag        string `json:"type_tag,omitempty"`
	Registered     bool   `json:"registered"`
	NetworkCode    int    `json:"mcc"`
	CarrierCode    int    `json:"mnc"`
	AreaCode       *int   `json:"area_code,omitempty"`
	CompositeID    *int64 `json:"composite_id,omitempty"`
	PhysicalCellID *int   `json:"physical_cell_id,omitempty"`
	ChannelNumber  *int   `json:"channel_number,omitempty"`
	Signal         Signal `json:"signal"`
	TimingAdvance  *int   `json:"timing_advance,omitempty"`
	BandwidthKHz   *int   `json:"bandwidth_khz,omitempty"`
}

// QualityInputs returns the RSRP/RSRQ/SINR triple the quality scorer uses for
// the record's RAT. NR reports the SS-based variants; GSM and WCDMA have no
// comparable metrics and return nils.
func (r RawRecord) QualityInputs() (rsrp, rsrq, sinr *float64) {
	switch r.RAT {
	case LTE:
		return r.Signal.RSRP, r.Signal.RSRQ, r.Signal.SINR
	case NR:
		return r.Signal.SSRSRP, r.Signal.SSRSRQ, r.Signal.SSSINR
	case GSM, WCDMA, Unknown:
		return nil, nil, nil
	}
	return nil, nil, nil
}

// ReferencePower returns the reference-signal power usable by the path-loss
// distance model, or nil when the RAT does not report one.
func (r RawRecord) ReferencePower() *float64 {
	switch r.RAT {
	case LTE:
		return r.Signal.RSRP
	case NR:
		return r.Signal.SSRSRP
	case GSM, WCDMA, Unknown:
		return nil
	}
	return nil
}

// Int returns a pointer to v, for building records in code and tests.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
