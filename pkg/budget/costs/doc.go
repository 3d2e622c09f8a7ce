// Package costs holds the static action cost table.
//
// Every business action that spends provider credits has exactly one entry
// declaring its estimated cost. The table is populated once at startup from
// configuration and immutable afterwards; looking up an unregistered action
// is a programming error, not a budget refusal.
package costs
