/*
   Steam Library For Go
   Copyright (C) 2016 Ahmed Samy <f.fallen45@gmail.com>

   This library is free software; you can redistribute it and/or
   modify it under the terms of the GNU Lesser General Public
   License as published by the Free Software Foundation; either
   version 2.1 of the License, or (at your option) any later version.

   This library is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
   Lesser General Public License for more details.

   You should have received a copy of the GNU Lesser General Public
   License along with this library; if not, write to the Free Software
   Foundation, Inc., 51 Franklin St, Fifth Floor, Boston, MA  02110-1301  USA
*/
package steam

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ConfirmationKind classifies a pending confirmation.
type ConfirmationKind int

const (
	ConfirmationUnknown           ConfirmationKind = 0
	ConfirmationGeneric           ConfirmationKind = 1
	ConfirmationTrade             ConfirmationKind = 2
	ConfirmationMarket            ConfirmationKind = 3
	ConfirmationFeatureOptOut     ConfirmationKind = 4
	ConfirmationPhoneNumberChange ConfirmationKind = 5
	ConfirmationAccountRecovery   ConfirmationKind = 6
	ConfirmationAPIKey            ConfirmationKind = 9
)

// ConfirmationAction is what to do with a batch of confirmations.
type ConfirmationAction int

const (
	Accept ConfirmationAction = iota
	Deny
)

func (a ConfirmationAction) tag() string {
	if a == Accept {
		return tagAccept
	}
	return tagCancel
}

// Confirmation is one pending account action awaiting a signed
// approval. Immutable; acting on one that was already resolved is
// rejected by Steam and surfaced as an error.
type Confirmation struct {
	ID           string           `json:"id"`
	Nonce        string           `json:"nonce"`
	Kind         ConfirmationKind `json:"type"`
	CreationTime int64            `json:"creation_time"`
	CreatorID    string           `json:"creator_id"`
	TypeName     string           `json:"type_name"`
}

// TradeOfferID parses the creator id as a trade offer id. Only
// meaningful for trade confirmations.
func (c Confirmation) TradeOfferID() (uint64, bool) {
	if c.Kind != ConfirmationTrade {
		return 0, false
	}
	id, err := strconv.ParseUint(c.CreatorID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

var (
	ErrCannotFindConfirmations = errors.New("steam: unable to list confirmations")
	ErrConfirmationRejected    = errors.New("steam: confirmation operation rejected, it may already be resolved")
	ErrCannotFindOfferID       = errors.New("steam: confirmation details carry no trade offer id")
)

const offerIDPrefix = "tradeofferid_"

// ConfirmationClient performs signed confirmation operations on behalf
// of an authenticated session that holds the mobile secrets.
type ConfirmationClient struct {
	session *Session
}

// signedParams aligns the clock and signs the tag for the current
// server time.
func (c *ConfirmationClient) signedParams(ctx context.Context, tag string) (url.Values, error) {
	if err := c.session.clock.Align(ctx); err != nil {
		return nil, err
	}
	identity := c.session.identity
	return confirmationParams(identity.IdentitySecret, identity.deviceID(), tag, c.session.SteamID(), c.session.clock.Now())
}

// FetchConfirmations lists every pending confirmation.
func (c *ConfirmationClient) FetchConfirmations(ctx context.Context) ([]Confirmation, error) {
	if err := c.session.ensureValid(ctx); err != nil {
		return nil, err
	}

	params, err := c.signedParams(ctx, tagList)
	if err != nil {
		return nil, err
	}

	var response struct {
		Success       bool           `json:"success"`
		NeedsAuth     bool           `json:"needauth"`
		Confirmations []Confirmation `json:"conf"`
	}
	if err := c.session.client.getJSON(ctx, confirmationBase+"/getlist", params, &response); err != nil {
		return nil, err
	}
	if response.NeedsAuth {
		return nil, ErrSessionExpired
	}
	if !response.Success {
		return nil, ErrCannotFindConfirmations
	}
	return response.Confirmations, nil
}

// ProcessConfirmations accepts or denies the given confirmations in
// one batched request signed with the action's tag. An empty batch is
// a no-op that returns nil without touching the network.
func (c *ConfirmationClient) ProcessConfirmations(ctx context.Context, action ConfirmationAction, confirmations []Confirmation) error {
	if len(confirmations) == 0 {
		return nil
	}
	if err := c.session.ensureValid(ctx); err != nil {
		return err
	}

	params, err := c.signedParams(ctx, action.tag())
	if err != nil {
		return err
	}
	params.Set("op", action.tag())
	for _, confirmation := range confirmations {
		params.Add("cid[]", confirmation.ID)
		params.Add("ck[]", confirmation.Nonce)
	}

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.session.client.postFormJSON(ctx, confirmationBase+"/multiajaxop", params, &response); err != nil {
		return err
	}
	if !response.Success {
		if response.Message != "" {
			return fmt.Errorf("%w: %s", ErrConfirmationRejected, response.Message)
		}
		return ErrConfirmationRejected
	}

	c.session.log.Info("steam confirmations processed",
		"op", action.tag(), "count", len(confirmations))
	return nil
}

// HandleConfirmations fetches the pending set, keeps the ones the
// filter selects and processes them as one batch.
func (c *ConfirmationClient) HandleConfirmations(ctx context.Context, action ConfirmationAction, filter func(Confirmation) bool) error {
	confirmations, err := c.FetchConfirmations(ctx)
	if err != nil {
		return err
	}

	selected := confirmations[:0:0]
	for _, confirmation := range confirmations {
		if filter == nil || filter(confirmation) {
			selected = append(selected, confirmation)
		}
	}
	return c.ProcessConfirmations(ctx, action, selected)
}

// ConfirmationOfferID digs the trade offer id out of the confirmation
// details page. Works for trade confirmations only.
func (c *ConfirmationClient) ConfirmationOfferID(ctx context.Context, confirmation Confirmation) (uint64, error) {
	if err := c.session.ensureValid(ctx); err != nil {
		return 0, err
	}

	params, err := c.signedParams(ctx, tagDetails)
	if err != nil {
		return 0, err
	}

	var response struct {
		Success bool   `json:"success"`
		HTML    string `json:"html"`
	}
	err = c.session.client.getJSON(ctx, confirmationBase+"/details/"+confirmation.ID, params, &response)
	if err != nil {
		return 0, err
	}
	if !response.Success {
		return 0, ErrCannotFindOfferID
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(response.HTML))
	if err != nil {
		return 0, err
	}

	var offerID uint64
	doc.Find(".tradeoffer").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id, ok := sel.Attr("id")
		if !ok || !strings.HasPrefix(id, offerIDPrefix) {
			return true
		}
		raw, err := strconv.ParseUint(id[len(offerIDPrefix):], 10, 64)
		if err != nil {
			return true
		}
		offerID = raw
		return false
	})
	if offerID == 0 {
		return 0, ErrCannotFindOfferID
	}
	return offerID, nil
}
