// Package monitor runs the full deal-thread evaluation cycle: fetch a deal
// and its stakeholders from the CRM, infer roles, score engagement, analyze
// coverage, predict risk, diff against the previous snapshot, and deliver
// whatever alerts survive the throttle.
//
// The service depends on the DealSource and SnapshotStore interfaces defined
// in this package; implementations live in crm/ and repository/postgres/.
package monitor
