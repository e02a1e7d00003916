package main

import (
	"testing"
)

func TestAccountURL(t *testing.T) {
	origBase, origBiz, origAcc := baseURL, businessID, accountID
	defer func() { baseURL, businessID, accountID = origBase, origBiz, origAcc }()

	baseURL = "http://localhost:8080"
	businessID = "biz-1"
	accountID = "acc-1"

	got := accountURL("/issues/scan")
	want := "http://localhost:8080/api/v1/businesses/biz-1/accounts/acc-1/issues/scan"
	if got != want {
		t.Fatalf("accountURL = %q, want %q", got, want)
	}
}
