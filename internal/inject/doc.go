// SPDX-License-Identifier: MPL-2.0

// Package inject is the dependency container. It instantiates each name at
// most once, asks an autoloader for names it does not know, and disposes
// providers in reverse instantiation order.
package inject
