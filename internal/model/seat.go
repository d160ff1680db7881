package model

// ObserverSeat identifies the cluster member whose worker.log is being
// parsed: a stable label plus the member's private/public addresses and CP
// priority. Fields fill in progressively as banner lines are seen; a
// directory-name fallback may seed them before any banner arrives.
type ObserverSeat struct {
	Label       string // e.g. "A1_W1"
	PrivateAddr string // e.g. "172.31.88.126"
	PublicAddr  string // e.g. "18.132.45.35"
	CPPriority  string // e.g. "100"
}
