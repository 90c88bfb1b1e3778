/**
  Steam Library For Go
  Copyright (C) 2016 Ahmed Samy <f.fallen45@gmail.com>
  Copyright (C) 2016 Mark Samman <mark.samman@gmail.com>

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

import "strconv"

// SteamID is the packed 64-bit account identifier.
type SteamID uint64

const (
	UniverseInvalid = iota
	UniversePublic
	UniverseBeta
	UniverseInternal
	UniverseDev
)

const (
	AccountTypeInvalid = iota
	AccountTypeIndividual
	AccountTypeMultiSeat
	AccountTypeGameServer
	AccountTypeAnonymousGameServer
	AccountTypePending
	AccountTypeContentServer
	AccountTypeClan
	AccountTypeChat
	AccountTypeP2PSuperSeeder
	AccountTypeAnonymous
)

const (
	AccountInstanceAll = iota
	AccountInstanceDesktop
	AccountInstanceConsole
	AccountInstanceWeb
)

func MakeSteamID(accid, instance, accountType uint32, universe uint8) SteamID {
	bits := uint64(accid)
	bits |= uint64(instance&0xFFFFF) << 32
	bits |= uint64(accountType) << 52
	bits |= uint64(universe) << 56
	return SteamID(bits)
}

// ParseSteamID reads the decimal steam64 representation.
func ParseSteamID(s string) (SteamID, error) {
	bits, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return SteamID(bits), nil
}

func (sid SteamID) AccountID() uint32 {
	return uint32(sid & 0xFFFFFFFF)
}

func (sid SteamID) AccountInstance() uint32 {
	return uint32((sid >> 32) & 0xFFFFF)
}

func (sid SteamID) AccountType() uint32 {
	return uint32((sid >> 52) & 0xF)
}

func (sid SteamID) AccountUniverse() uint32 {
	return uint32((sid >> 56) & 0xFF)
}

func (sid SteamID) ToString() string {
	return strconv.FormatUint(uint64(sid), 10)
}

func (sid SteamID) String() string {
	return sid.ToString()
}
