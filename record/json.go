package record

import "encoding/json"

// MarshalJSON renders the set as a plain JSON array of records in current
// ordering, the wire format StoreAndForward and the JSON LocalStorage
// variant persist.
func (rs *RecordSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.Records())
}

// UnmarshalJSON replaces rs's contents with a JSON array of records,
// re-running Update (with sort) so identity/ordering invariants hold.
func (rs *RecordSet) UnmarshalJSON(data []byte) error {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return err
	}
	if rs.byID == nil {
		rs.byID = make(map[string]Record)
	}
	rs.order = nil
	clear(rs.byID)
	return rs.Update(recs, true)
}
