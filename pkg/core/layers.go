package core

// MaxLayers is the number of addressable object layers
const MaxLayers = 32

// LayerMask selects a set of layers, one bit per layer index
type LayerMask uint32

// AllLayers matches every layer
const AllLayers LayerMask = 0xFFFFFFFF

// LayerBit returns the mask containing only the given layer.
// Out of range layers produce an empty mask.
func LayerBit(layer int) LayerMask {
	if layer < 0 || layer >= MaxLayers {
		return 0
	}
	return 1 << uint(layer)
}

// LayersMask returns the mask containing all given layers
func LayersMask(layers ...int) LayerMask {
	var m LayerMask
	for _, l := range layers {
		m |= LayerBit(l)
	}
	return m
}

// Contains reports whether layer is part of the mask
func (m LayerMask) Contains(layer int) bool {
	return m&LayerBit(layer) != 0
}
