// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

import (
	"errors"
	"fmt"

	iso "cunicu.li/go-iso7816"
	"github.com/ebfe/scard"
)

// Cards lists all smart cards available via the PC/SC interface. Card
// names are strings describing the reader and slot, and depend on the
// operating system.
func Cards() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PC/SC: %w", err)
	}

	readers, err := ctx.ListReaders()

	if rerr := ctx.Release(); rerr != nil {
		return nil, fmt.Errorf("failed to release context: %w", rerr)
	}

	if errors.Is(err, scard.ErrNoReadersAvailable) {
		return nil, nil
	}

	return readers, err
}

// Open connects to the card in the named reader and opens a driver
// handle on it. The connection is exclusive until Close is called.
func Open(cardName string) (*Card, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to smart card daemon: %w", err)
	}

	h, err := ctx.Connect(cardName, scard.ShareExclusive, scard.ProtocolT1)
	if err != nil {
		if rerr := ctx.Release(); rerr != nil {
			return nil, fmt.Errorf("failed to release context: %w", rerr)
		}

		return nil, fmt.Errorf("failed to connect to smart card: %w", err)
	}

	release := func() error {
		if err := h.Disconnect(scard.LeaveCard); err != nil {
			return err
		}
		return ctx.Release()
	}

	status, err := h.Status()
	if err != nil {
		release() //nolint:errcheck
		return nil, fmt.Errorf("failed to query card status: %w", err)
	}

	sc := iso.NewCard(&pcscCard{h: h})

	card, err := NewCard(sc, status.Atr)
	if err != nil {
		release() //nolint:errcheck
		return nil, err
	}
	card.done = release

	return card, nil
}

// pcscCard adapts an ebfe/scard handle to the go-iso7816 card
// interface.
type pcscCard struct {
	h *scard.Card
}

func (c *pcscCard) Transmit(cmd []byte) ([]byte, error) {
	return c.h.Transmit(cmd)
}

func (c *pcscCard) BeginTransaction() error {
	return c.h.BeginTransaction()
}

func (c *pcscCard) EndTransaction() error {
	return c.h.EndTransaction(scard.LeaveCard)
}

func (c *pcscCard) Close() error {
	return nil
}

func (c *pcscCard) Base() iso.PCSCCard {
	return c
}
