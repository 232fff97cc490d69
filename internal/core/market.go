package core

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// CreateListing puts part of a credit up for sale and returns the listing
// id. The listed amount is capped by the credit's remaining amount at
// creation time and only ever decreases afterwards.
func (e *Engine) CreateListing(caller uuid.UUID, creditID, pricePerTon, amount uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return 0, err
	}
	credit, ok := e.st.credits[creditID]
	if !ok {
		return 0, ErrCreditNotFound
	}
	if caller != credit.Owner {
		return 0, ErrNotTokenOwner
	}
	if credit.Retired {
		return 0, ErrCreditAlreadyRetired
	}
	if pricePerTon == 0 {
		return 0, ErrInvalidPrice
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	if amount > credit.Amount {
		return 0, ErrInsufficientBalance
	}

	now := e.clock.Now()
	id := e.st.nextListingID
	e.st.listings[id] = &Listing{
		ID:          id,
		CreditID:    creditID,
		Seller:      caller,
		PricePerTon: pricePerTon,
		Amount:      amount,
		Active:      true,
		CreatedAt:   now,
	}
	e.st.nextListingID++

	e.recorder.Record(Event{
		Type:        EventListingCreated,
		Block:       now,
		Actor:       caller,
		CreditID:    creditID,
		ListingID:   id,
		Amount:      amount,
		PricePerTon: pricePerTon,
	})
	return id, nil
}

// CancelListing deactivates a listing without a fill. Seller only.
func (e *Engine) CancelListing(caller uuid.UUID, listingID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	listing, ok := e.st.listings[listingID]
	if !ok {
		return ErrListingNotFound
	}
	if caller != listing.Seller {
		return ErrUnauthorized
	}
	if !listing.Active {
		return ErrListingInactive
	}

	listing.Active = false
	listing.Amount = 0

	e.recorder.Record(Event{
		Type:      EventListingCancelled,
		Block:     e.clock.Now(),
		Actor:     caller,
		CreditID:  listing.CreditID,
		ListingID: listingID,
	})
	return nil
}

// PurchaseListing settles a partial or complete fill against the ledger.
// Payment settles before the token moves: if the token transfer then
// fails, the operation aborts with the seller already paid on the
// external rail. See DESIGN.md for the settlement-risk note.
func (e *Engine) PurchaseListing(buyer uuid.UUID, listingID, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	if err := e.enterGuard(); err != nil {
		return err
	}
	defer e.exitGuard()

	listing, ok := e.st.listings[listingID]
	if !ok {
		return ErrListingNotFound
	}
	if !listing.Active {
		return ErrListingInactive
	}
	if amount == 0 || amount > listing.Amount {
		return ErrInvalidAmount
	}
	if buyer == listing.Seller {
		return ErrInvalidPrincipal
	}
	// Total settlement value must fit in uint64; a wrapped product would
	// undercharge the buyer.
	if listing.PricePerTon > math.MaxUint64/amount {
		return ErrInvalidPrice
	}

	if err := e.gateway.TransferValue(buyer, listing.Seller, listing.PricePerTon*amount); err != nil {
		return fmt.Errorf("payment settlement: %w", err)
	}
	if err := e.st.transfer(amount, listing.Seller, buyer); err != nil {
		return err
	}

	now := e.clock.Now()
	if amount == listing.Amount {
		listing.Amount = 0
		listing.Active = false
	} else {
		listing.Amount -= amount
	}
	e.touchESG(buyer, now, func(rec *CorporateESG) {
		rec.TotalPurchased += amount
	})

	e.recorder.Record(Event{
		Type:         EventListingFilled,
		Block:        now,
		Actor:        buyer,
		Counterparty: listing.Seller,
		CreditID:     listing.CreditID,
		ListingID:    listingID,
		Amount:       amount,
		PricePerTon:  listing.PricePerTon,
	})
	return nil
}

// TransferCredits moves tokens peer to peer. The recipient's ESG record
// counts the transfer as a purchase, deliberately: acquisitions by any
// route raise the purchased total.
func (e *Engine) TransferCredits(caller, sender, recipient uuid.UUID, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireUnpaused(); err != nil {
		return err
	}
	if err := e.enterGuard(); err != nil {
		return err
	}
	defer e.exitGuard()

	if caller != sender {
		return ErrUnauthorized
	}
	if sender == recipient {
		return ErrInvalidPrincipal
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	if err := e.st.transfer(amount, sender, recipient); err != nil {
		return err
	}

	now := e.clock.Now()
	e.touchESG(recipient, now, func(rec *CorporateESG) {
		rec.TotalPurchased += amount
	})

	e.recorder.Record(Event{
		Type:         EventCreditsMoved,
		Block:        now,
		Actor:        sender,
		Counterparty: recipient,
		Amount:       amount,
	})
	return nil
}
