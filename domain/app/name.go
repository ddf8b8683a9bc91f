package app

// Name is the binary and product name.
const Name = "sealtun"
