package settings

func ResolveMTU(mtu int) int {
	if mtu <= 0 {
		return DefaultEthernetMTU
	}
	return mtu
}

// BufferSize fits one sealed packet of an interface with the given MTU.
func BufferSize(mtu int) int {
	return ResolveMTU(mtu) + AEADOverhead
}
