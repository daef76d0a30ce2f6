package blaze

import "github.com/korrin/meago/internal/blaze/tdf"

// NetAddr is one socket address forwarded as an opaque (ip, port) pair.
type NetAddr struct {
	IP   uint32
	Port uint16
}

// AddrPair is the external/internal address pair a client reports.
type AddrPair struct {
	External NetAddr
	Internal NetAddr
}

// QosData is the client's measured connection quality.
type QosData struct {
	DownBPS uint32
	UpBPS   uint32
	NATType uint32
}

// NetworkData is everything the server relays about a client's network
// situation. The address pair sits behind an unset-able union on the wire.
type NetworkData struct {
	AddrSet       bool
	Addr          AddrPair
	Qos           QosData
	HardwareFlags uint16
}

func writeNetAddr(w *tdf.Writer, label string, a NetAddr) {
	w.TagGroup(label)
	w.TagVarInt("IP", uint64(a.IP))
	w.TagVarInt("PORT", uint64(a.Port))
	w.EndGroup()
}

func readNetAddr(r *tdf.Reader, label string) (NetAddr, error) {
	if err := r.UntilTag(label, tdf.TypeGroup); err != nil {
		return NetAddr{}, err
	}
	if err := r.EnterGroup(); err != nil {
		return NetAddr{}, err
	}
	ip, err := r.TagVarInt("IP")
	if err != nil {
		return NetAddr{}, err
	}
	port, err := r.TagVarInt("PORT")
	if err != nil {
		return NetAddr{}, err
	}
	if err := r.ExitGroup(); err != nil {
		return NetAddr{}, err
	}
	return NetAddr{IP: uint32(ip), Port: uint16(port)}, nil
}

// EncodeAddr writes the tagged address union: key 2 wraps the pair group,
// unset when the client never reported addresses.
func (n *NetworkData) EncodeAddr(w *tdf.Writer, label string) {
	if !n.AddrSet {
		w.TagUnionUnset(label)
		return
	}
	w.TagUnion(label, 2)
	w.TagGroup("VALU")
	writeNetAddr(w, "EXIP", n.Addr.External)
	writeNetAddr(w, "INIP", n.Addr.Internal)
	w.EndGroup()
}

// DecodeAddr reads the tagged address union written by EncodeAddr.
func (n *NetworkData) DecodeAddr(r *tdf.Reader, label string) error {
	if err := r.UntilTag(label, tdf.TypeUnion); err != nil {
		return err
	}
	u, err := r.ReadUnionHeader()
	if err != nil {
		return err
	}
	if !u.Set {
		n.AddrSet = false
		return nil
	}
	if err := r.EnterGroup(); err != nil {
		return err
	}
	ext, err := readNetAddr(r, "EXIP")
	if err != nil {
		return err
	}
	inner, err := readNetAddr(r, "INIP")
	if err != nil {
		return err
	}
	if err := r.ExitGroup(); err != nil {
		return err
	}
	n.AddrSet = true
	n.Addr = AddrPair{External: ext, Internal: inner}
	return nil
}

// EncodeQos writes the tagged QOS record group.
func (n *NetworkData) EncodeQos(w *tdf.Writer, label string) {
	w.TagGroup(label)
	w.TagVarInt("DBPS", uint64(n.Qos.DownBPS))
	w.TagVarInt("NATT", uint64(n.Qos.NATType))
	w.TagVarInt("UBPS", uint64(n.Qos.UpBPS))
	w.EndGroup()
}

// DecodeQos reads the tagged QOS record group.
func (n *NetworkData) DecodeQos(r *tdf.Reader, label string) error {
	if err := r.UntilTag(label, tdf.TypeGroup); err != nil {
		return err
	}
	if err := r.EnterGroup(); err != nil {
		return err
	}
	dbps, err := r.TagVarInt("DBPS")
	if err != nil {
		return err
	}
	natt, err := r.TagVarInt("NATT")
	if err != nil {
		return err
	}
	ubps, err := r.TagVarInt("UBPS")
	if err != nil {
		return err
	}
	if err := r.ExitGroup(); err != nil {
		return err
	}
	n.Qos = QosData{DownBPS: uint32(dbps), UpBPS: uint32(ubps), NATType: uint32(natt)}
	return nil
}
