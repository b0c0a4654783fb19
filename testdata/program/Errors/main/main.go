package main

//@derive(opaque::Sizd)
type Bad struct{ s string }

//@derive(opaque::Unsized)
type Str struct{ s string }

func main() {}
