package sim

// MacBase is the OUI and prefix shared by every simulated MAC.
const MacBase uint64 = 0x24a600000000

// Registry hands out device numbers and addresses for one simulation run.
type Registry struct {
	next uint64
}

func NewRegistry() *Registry {
	return &Registry{next: 1}
}

// NextDevice returns a fresh device number.
func (r *Registry) NextDevice() uint64 {
	n := r.next
	r.next++
	return n
}

// MacAddress of service access point sap on device dev.  The chassis uses
// sap 0, port i uses sap i+1.
func MacAddress(dev uint64, sap int) uint64 {
	return MacBase + dev*0x10000 + uint64(sap)
}
